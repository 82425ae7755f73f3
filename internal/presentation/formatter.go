package presentation

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// WriteText writes dto as aligned key/value lines.
func WriteText(w io.Writer, dto ComponentDTO) error {
	line := func(key string, value any) {
		_, _ = fmt.Fprintf(w, "%-14s %v\n", key+":", value)
	}
	line("uid", dto.UID)
	line("kind", dto.Kind)
	if dto.DeclaredParent != "" {
		line("parent", dto.DeclaredParent)
	}
	if len(dto.Children) > 0 {
		line("children", dto.Children)
	}
	if dto.Symmetry != "" {
		line("symmetry", dto.Symmetry)
	}
	if dto.Origin != nil {
		line("origin", fmt.Sprintf("(%g, %g, %g)", dto.Origin[0], dto.Origin[1], dto.Origin[2]))
	}
	if len(dto.ReferencedBy) > 0 {
		line("referenced by", dto.ReferencedBy)
	}
	if dto.Error != "" {
		line("error", errorStyle.Render(dto.Error))
	}
	return nil
}

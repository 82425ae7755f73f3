package presentation

// ComponentDTO is the printable description of one component.
type ComponentDTO struct {
	UID  string `json:"uid"`
	Kind string `json:"kind"`
	// Parent is the linked positioning parent; DeclaredParent is the UID the
	// component names, which may be unresolved.
	Parent         string      `json:"parent,omitempty"`
	DeclaredParent string      `json:"declared_parent,omitempty"`
	Children       []string    `json:"children,omitempty"`
	Symmetry       string      `json:"symmetry,omitempty"`
	Origin         *[3]float64 `json:"origin,omitempty"`
	ReferencedBy   []string    `json:"referenced_by,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// ShapeDTO describes one built shape.
type ShapeDTO struct {
	UID         string     `json:"uid"`
	Kind        string     `json:"kind"`
	Mirrored    bool       `json:"mirrored,omitempty"`
	Min         [3]float64 `json:"min"`
	Max         [3]float64 `json:"max"`
	Tools       []string   `json:"tools,omitempty"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	Error       string     `json:"error,omitempty"`
}

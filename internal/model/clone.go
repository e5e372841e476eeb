package model

import "gopkg.in/yaml.v3"

// Clone returns a deep copy of the document. Mutating the copy never
// affects the original.
func (d *Document) Clone() *Document {
	out := &Document{
		Instructors:  *cloneCollection(&d.Instructors, (*Instructor).Clone),
		Modules:      *cloneCollection(&d.Modules, (*Module).Clone),
		EmailConfig:  cloneNode(d.EmailConfig),
		ReportConfig: cloneNode(d.ReportConfig),
	}
	if d.AuditLog != nil {
		out.AuditLog = make([]AuditEntry, len(d.AuditLog))
		for i, e := range d.AuditLog {
			out.AuditLog[i] = e.Clone()
		}
	}
	return out
}

func cloneCollection[T any](c *Collection[T], cloneFn func(*T) *T) *Collection[T] {
	out := &Collection[T]{
		keys:    make([]string, len(c.keys)),
		items:   make(map[string]*T, len(c.items)),
		present: c.present,
	}
	copy(out.keys, c.keys)
	for k, v := range c.items {
		out.items[k] = cloneFn(v)
	}
	return out
}

// Clone returns a deep copy of the instructor.
func (i *Instructor) Clone() *Instructor {
	c := *i
	c.Modules = cloneStrings(i.Modules)
	return &c
}

// Clone returns a deep copy of the module.
func (m *Module) Clone() *Module {
	c := *m
	if m.OSRequired != nil {
		c.OSRequired = make([]OSRequirement, len(m.OSRequired))
		copy(c.OSRequired, m.OSRequired)
	}
	if m.Software != nil {
		c.Software = make([]SoftwareRequirement, len(m.Software))
		for i := range m.Software {
			c.Software[i] = m.Software[i].Clone()
		}
	}
	return &c
}

// Clone returns a deep copy of the software requirement.
func (s SoftwareRequirement) Clone() SoftwareRequirement {
	s.OSSupported = OSList(cloneStrings(s.OSSupported))
	return s
}

// Clone returns a deep copy of the audit entry.
func (e AuditEntry) Clone() AuditEntry {
	if e.Changes != nil {
		changes := make([]FieldChange, len(e.Changes))
		copy(changes, e.Changes)
		e.Changes = changes
	}
	return e
}

// cloneStrings keeps the nil/empty distinction.
func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneNode(child)
		}
	}
	// Aliases become independent copies of their anchor.
	c.Alias = cloneNode(n.Alias)
	return &c
}

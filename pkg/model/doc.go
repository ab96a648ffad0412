// Package model defines the layout, document and finding types shared by the
// resolver, the path accessor and the renderers. Layouts are closed records:
// field types, section categories and finding severities are enumerations
// that parse leniently (see ParseFieldType, ParseSectionCategory and
// ParseSeverity) so configuration authored elsewhere never fails to load on an
// unexpected token. Fields point at sections through SectionID; a field whose
// SectionID matches no section is rendered in the unassigned group.
package model

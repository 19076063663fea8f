// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

// SectionID names a navigable area of the dashboard.
type SectionID string

const (
	SectionSummary    SectionID = "summary"
	SectionDashboard  SectionID = "dashboard"
	SectionAdmin      SectionID = "admin"
	SectionPublishing SectionID = "publishing"
	SectionPlatforms  SectionID = "platforms"
	SectionBackend    SectionID = "backend"
	SectionOperations SectionID = "operations"
	SectionCMS        SectionID = "cms"
	SectionReports    SectionID = "reports"
)

// Section is one menu entry. An empty Roles list means every role.
type Section struct {
	ID    SectionID
	Title string
	// Path is the KPI document fetched when the section opens.
	Path  string
	Roles []Role
}

// sections is in menu order.
var sections = []Section{
	{ID: SectionSummary, Title: "Platform Summary", Path: "/dashboard/overview"},
	{ID: SectionDashboard, Title: "Analytics Dashboard", Path: "/dashboard/kpis"},
	{ID: SectionAdmin, Title: "Admin Panel", Path: "/dashboard/health", Roles: []Role{RoleAdmin}},
	{ID: SectionPublishing, Title: "Publishing Hub", Path: "/publishing/kpis", Roles: []Role{RoleAdmin, RolePM, RoleTPM, RoleEM}},
	{ID: SectionPlatforms, Title: "Platform Analytics", Path: "/platform/kpis"},
	{ID: SectionBackend, Title: "Backend Services", Path: "/backend/kpis", Roles: []Role{RoleAdmin, RoleSRE, RoleEM}},
	{ID: SectionOperations, Title: "Operations", Path: "/ops/kpis", Roles: []Role{RoleAdmin, RoleSRE, RoleEM}},
	{ID: SectionCMS, Title: "CMS", Path: "/cms/kpis", Roles: []Role{RoleAdmin, RolePM, RoleTPM}},
	{ID: SectionReports, Title: "Reports", Path: "/reports/weekly"},
}

// AllowedFor reports whether role r may open the section. Admin sees everything.
func (s Section) AllowedFor(r Role) bool {
	if !r.Valid() {
		return false
	}
	if len(s.Roles) == 0 || r == RoleAdmin {
		return true
	}
	for _, allowed := range s.Roles {
		if allowed == r {
			return true
		}
	}
	return false
}

// Sections returns every section in menu order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// VisibleSections returns the sections role r may open, in menu order.
func VisibleSections(r Role) []Section {
	var out []Section
	for _, s := range sections {
		if s.AllowedFor(r) {
			out = append(out, s)
		}
	}
	return out
}

// LookupSection finds a section by ID.
func LookupSection(id SectionID) (Section, bool) {
	for _, s := range sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

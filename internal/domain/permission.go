package domain

import "fmt"

// Permission is an atomic named capability that a role either holds or does not.
type Permission string

// PermissionArea groups permissions by feature for display.
type PermissionArea string

// Permission areas.
const (
	AreaFinancial     PermissionArea = "financial"
	AreaProjects      PermissionArea = "projects"
	AreaEstimates     PermissionArea = "estimates"
	AreaPunchList     PermissionArea = "punch_list"
	AreaPhotos        PermissionArea = "photos"
	AreaDailyLogs     PermissionArea = "daily_logs"
	AreaChangeOrders  PermissionArea = "change_orders"
	AreaSchedule      PermissionArea = "schedule"
	AreaMaterials     PermissionArea = "materials"
	AreaInvoicing     PermissionArea = "invoicing"
	AreaWalkthroughs  PermissionArea = "walkthroughs"
	AreaTeam          PermissionArea = "team"
	AreaCommunication PermissionArea = "communication"
)

// Financial permissions.
const (
	PermViewFinancials    Permission = "view_financials"
	PermViewPricing       Permission = "view_pricing"
	PermViewProfitMargins Permission = "view_profit_margins"
	PermViewLaborCosts    Permission = "view_labor_costs"
	PermViewReports       Permission = "view_reports"
	PermExportReports     Permission = "export_reports"
)

// Project permissions.
const (
	PermViewAllProjects      Permission = "view_all_projects"
	PermViewAssignedProjects Permission = "view_assigned_projects"
	PermCreateProjects       Permission = "create_projects"
	PermEditProjects         Permission = "edit_projects"
	PermDeleteProjects       Permission = "delete_projects"
	PermAssignCrews          Permission = "assign_crews"
)

// Estimate permissions.
const (
	PermViewEstimates    Permission = "view_estimates"
	PermCreateEstimates  Permission = "create_estimates"
	PermEditEstimates    Permission = "edit_estimates"
	PermApproveEstimates Permission = "approve_estimates"
)

// Punch list permissions.
const (
	PermViewPunchList      Permission = "view_punch_list"
	PermCreatePunchItems   Permission = "create_punch_items"
	PermCompletePunchItems Permission = "complete_punch_items"
	PermVerifyPunchItems   Permission = "verify_punch_items"
)

// Photo permissions.
const (
	PermViewPhotos   Permission = "view_photos"
	PermUploadPhotos Permission = "upload_photos"
	PermDeletePhotos Permission = "delete_photos"
)

// Daily log permissions.
const (
	PermViewDailyLogs   Permission = "view_daily_logs"
	PermCreateDailyLogs Permission = "create_daily_logs"
	PermEditDailyLogs   Permission = "edit_daily_logs"
)

// Change order permissions.
const (
	PermViewChangeOrders    Permission = "view_change_orders"
	PermCreateChangeOrders  Permission = "create_change_orders"
	PermApproveChangeOrders Permission = "approve_change_orders"
)

// Schedule permissions.
const (
	PermViewSchedule Permission = "view_schedule"
	PermEditSchedule Permission = "edit_schedule"
)

// Material permissions.
const (
	PermViewMaterials         Permission = "view_materials"
	PermOrderMaterials        Permission = "order_materials"
	PermApproveMaterialOrders Permission = "approve_material_orders"
)

// Invoicing permissions.
const (
	PermViewInvoices   Permission = "view_invoices"
	PermCreateInvoices Permission = "create_invoices"
	PermSendInvoices   Permission = "send_invoices"
	PermRecordPayments Permission = "record_payments"
)

// Walkthrough permissions.
const (
	PermViewWalkthroughs    Permission = "view_walkthroughs"
	PermConductWalkthroughs Permission = "conduct_walkthroughs"
	PermSignOffWalkthroughs Permission = "sign_off_walkthroughs"
)

// Team permissions.
const (
	PermViewTeam           Permission = "view_team"
	PermManageTeam         Permission = "manage_team"
	PermAssignRoles        Permission = "assign_roles"
	PermViewTimeEntries    Permission = "view_time_entries"
	PermApproveTimeEntries Permission = "approve_time_entries"
)

// Communication permissions.
const (
	PermSendMessages       Permission = "send_messages"
	PermViewAllMessages    Permission = "view_all_messages"
	PermMessageClients     Permission = "message_clients"
	PermViewClientContacts Permission = "view_client_contacts"
)

type permissionEntry struct {
	permission Permission
	area       PermissionArea
}

// permissionCatalog is the closed set of permissions in declaration order.
var permissionCatalog = []permissionEntry{
	{PermViewFinancials, AreaFinancial},
	{PermViewPricing, AreaFinancial},
	{PermViewProfitMargins, AreaFinancial},
	{PermViewLaborCosts, AreaFinancial},
	{PermViewReports, AreaFinancial},
	{PermExportReports, AreaFinancial},

	{PermViewAllProjects, AreaProjects},
	{PermViewAssignedProjects, AreaProjects},
	{PermCreateProjects, AreaProjects},
	{PermEditProjects, AreaProjects},
	{PermDeleteProjects, AreaProjects},
	{PermAssignCrews, AreaProjects},

	{PermViewEstimates, AreaEstimates},
	{PermCreateEstimates, AreaEstimates},
	{PermEditEstimates, AreaEstimates},
	{PermApproveEstimates, AreaEstimates},

	{PermViewPunchList, AreaPunchList},
	{PermCreatePunchItems, AreaPunchList},
	{PermCompletePunchItems, AreaPunchList},
	{PermVerifyPunchItems, AreaPunchList},

	{PermViewPhotos, AreaPhotos},
	{PermUploadPhotos, AreaPhotos},
	{PermDeletePhotos, AreaPhotos},

	{PermViewDailyLogs, AreaDailyLogs},
	{PermCreateDailyLogs, AreaDailyLogs},
	{PermEditDailyLogs, AreaDailyLogs},

	{PermViewChangeOrders, AreaChangeOrders},
	{PermCreateChangeOrders, AreaChangeOrders},
	{PermApproveChangeOrders, AreaChangeOrders},

	{PermViewSchedule, AreaSchedule},
	{PermEditSchedule, AreaSchedule},

	{PermViewMaterials, AreaMaterials},
	{PermOrderMaterials, AreaMaterials},
	{PermApproveMaterialOrders, AreaMaterials},

	{PermViewInvoices, AreaInvoicing},
	{PermCreateInvoices, AreaInvoicing},
	{PermSendInvoices, AreaInvoicing},
	{PermRecordPayments, AreaInvoicing},

	{PermViewWalkthroughs, AreaWalkthroughs},
	{PermConductWalkthroughs, AreaWalkthroughs},
	{PermSignOffWalkthroughs, AreaWalkthroughs},

	{PermViewTeam, AreaTeam},
	{PermManageTeam, AreaTeam},
	{PermAssignRoles, AreaTeam},
	{PermViewTimeEntries, AreaTeam},
	{PermApproveTimeEntries, AreaTeam},

	{PermSendMessages, AreaCommunication},
	{PermViewAllMessages, AreaCommunication},
	{PermMessageClients, AreaCommunication},
	{PermViewClientContacts, AreaCommunication},
}

var permissionAreas = func() map[Permission]PermissionArea {
	m := make(map[Permission]PermissionArea, len(permissionCatalog))
	for _, e := range permissionCatalog {
		m[e.permission] = e.area
	}
	return m
}()

// AllPermissions returns the closed permission set in declaration order.
func AllPermissions() []Permission {
	out := make([]Permission, 0, len(permissionCatalog))
	for _, e := range permissionCatalog {
		out = append(out, e.permission)
	}
	return out
}

// IsValid checks if the permission belongs to the catalog.
func (p Permission) IsValid() bool {
	_, ok := permissionAreas[p]
	return ok
}

// Area returns the feature area of the permission, or "" if unknown.
func (p Permission) Area() PermissionArea {
	return permissionAreas[p]
}

// ParsePermission converts a permission tag into a Permission.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return p, nil
}

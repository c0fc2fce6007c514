package access

import (
	"slices"

	"github.com/bissquit/fieldops/internal/domain"
)

// RoleSpec is the configured shape of a single role.
// Permissions are raw tags and are validated when the catalog is built.
type RoleSpec struct {
	Label       string   `koanf:"label"`
	Description string   `koanf:"description"`
	Color       string   `koanf:"color"`
	Icon        string   `koanf:"icon"`
	Permissions []string `koanf:"permissions"`
}

// Policy maps role tags to their configuration.
type Policy struct {
	Roles map[string]RoleSpec `koanf:"roles"`
}

func tags(perms ...domain.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}

func allExcept(excluded ...domain.Permission) []domain.Permission {
	out := make([]domain.Permission, 0, len(domain.AllPermissions()))
	for _, p := range domain.AllPermissions() {
		if !slices.Contains(excluded, p) {
			out = append(out, p)
		}
	}
	return out
}

// DefaultPolicy returns the built-in role policy.
func DefaultPolicy() Policy {
	return Policy{
		Roles: map[string]RoleSpec{
			string(domain.RoleOwner): {
				Label:       "Owner",
				Description: "Full access to every project, financial record and team setting",
				Color:       "#7c3aed",
				Icon:        "crown",
				Permissions: tags(allExcept(domain.PermViewAssignedProjects)...),
			},
			string(domain.RoleProjectManager): {
				Label:       "Project Manager",
				Description: "Runs projects end to end: estimates, schedules, change orders and crews",
				Color:       "#2563eb",
				Icon:        "briefcase",
				Permissions: tags(
					domain.PermViewFinancials,
					domain.PermViewPricing,
					domain.PermViewLaborCosts,
					domain.PermViewReports,

					domain.PermViewAllProjects,
					domain.PermCreateProjects,
					domain.PermEditProjects,
					domain.PermAssignCrews,

					domain.PermViewEstimates,
					domain.PermCreateEstimates,
					domain.PermEditEstimates,
					domain.PermApproveEstimates,

					domain.PermViewPunchList,
					domain.PermCreatePunchItems,
					domain.PermCompletePunchItems,
					domain.PermVerifyPunchItems,

					domain.PermViewPhotos,
					domain.PermUploadPhotos,
					domain.PermDeletePhotos,

					domain.PermViewDailyLogs,
					domain.PermCreateDailyLogs,
					domain.PermEditDailyLogs,

					domain.PermViewChangeOrders,
					domain.PermCreateChangeOrders,
					domain.PermApproveChangeOrders,

					domain.PermViewSchedule,
					domain.PermEditSchedule,

					domain.PermViewMaterials,
					domain.PermOrderMaterials,
					domain.PermApproveMaterialOrders,

					domain.PermViewInvoices,
					domain.PermCreateInvoices,

					domain.PermViewWalkthroughs,
					domain.PermConductWalkthroughs,
					domain.PermSignOffWalkthroughs,

					domain.PermViewTeam,
					domain.PermViewTimeEntries,
					domain.PermApproveTimeEntries,

					domain.PermSendMessages,
					domain.PermViewAllMessages,
					domain.PermMessageClients,
					domain.PermViewClientContacts,
				),
			},
			string(domain.RoleForeman): {
				Label:       "Foreman",
				Description: "Leads crews on assigned job sites, logs progress and punch items",
				Color:       "#ea580c",
				Icon:        "hard-hat",
				Permissions: tags(
					domain.PermViewAssignedProjects,

					domain.PermViewPunchList,
					domain.PermCreatePunchItems,
					domain.PermCompletePunchItems,
					domain.PermVerifyPunchItems,

					domain.PermViewPhotos,
					domain.PermUploadPhotos,

					domain.PermViewDailyLogs,
					domain.PermCreateDailyLogs,
					domain.PermEditDailyLogs,

					domain.PermViewChangeOrders,
					domain.PermCreateChangeOrders,

					domain.PermViewSchedule,

					domain.PermViewMaterials,
					domain.PermOrderMaterials,

					domain.PermViewWalkthroughs,
					domain.PermConductWalkthroughs,

					domain.PermViewTeam,
					domain.PermViewTimeEntries,
					domain.PermApproveTimeEntries,

					domain.PermSendMessages,
				),
			},
			string(domain.RoleInstaller): {
				Label:       "Installer",
				Description: "Performs installs on assigned projects and reports from the field",
				Color:       "#16a34a",
				Icon:        "wrench",
				Permissions: tags(
					domain.PermViewAssignedProjects,
					domain.PermViewPunchList,
					domain.PermCompletePunchItems,
					domain.PermViewPhotos,
					domain.PermUploadPhotos,
					domain.PermViewDailyLogs,
					domain.PermCreateDailyLogs,
					domain.PermViewSchedule,
					domain.PermViewMaterials,
					domain.PermViewWalkthroughs,
					domain.PermSendMessages,
				),
			},
			string(domain.RoleOfficeAdmin): {
				Label:       "Office Admin",
				Description: "Handles billing, scheduling and client communication from the office",
				Color:       "#db2777",
				Icon:        "building",
				Permissions: tags(
					domain.PermViewFinancials,
					domain.PermViewPricing,
					domain.PermViewReports,
					domain.PermExportReports,

					domain.PermViewAllProjects,
					domain.PermCreateProjects,
					domain.PermEditProjects,

					domain.PermViewEstimates,
					domain.PermCreateEstimates,
					domain.PermEditEstimates,

					domain.PermViewPunchList,
					domain.PermViewPhotos,
					domain.PermViewDailyLogs,
					domain.PermViewChangeOrders,

					domain.PermViewSchedule,
					domain.PermEditSchedule,

					domain.PermViewMaterials,
					domain.PermOrderMaterials,

					domain.PermViewInvoices,
					domain.PermCreateInvoices,
					domain.PermSendInvoices,
					domain.PermRecordPayments,

					domain.PermViewWalkthroughs,

					domain.PermViewTeam,
					domain.PermManageTeam,
					domain.PermViewTimeEntries,

					domain.PermSendMessages,
					domain.PermViewAllMessages,
					domain.PermMessageClients,
					domain.PermViewClientContacts,
				),
			},
			string(domain.RoleSubcontractor): {
				Label:       "Subcontractor",
				Description: "External trade partner with access limited to assigned projects",
				Color:       "#64748b",
				Icon:        "truck",
				Permissions: tags(
					domain.PermViewAssignedProjects,
					domain.PermViewPunchList,
					domain.PermCompletePunchItems,
					domain.PermViewPhotos,
					domain.PermUploadPhotos,
					domain.PermViewDailyLogs,
					domain.PermViewSchedule,
					domain.PermSendMessages,
				),
			},
		},
	}
}

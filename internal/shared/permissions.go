package shared

// Core platform permissions.
const (
	PermUsersView = "users.view"
	PermUsersEdit = "users.edit"

	PermRolesView = "roles.view"
	PermRolesEdit = "roles.edit"

	PermBookingView   = "booking.view"
	PermBookingEdit   = "booking.edit"
	PermBookingDelete = "booking.delete"

	PermFinanceView   = "finance.view"
	PermFinanceExport = "finance.export"

	PermHousekeepingView = "housekeeping.view"
	PermHousekeepingEdit = "housekeeping.edit"
)

// CoreScopes lists all permissions under management in the admin panel.
func CoreScopes() []string {
	return []string{
		PermUsersView,
		PermUsersEdit,
		PermRolesView,
		PermRolesEdit,
		PermBookingView,
		PermBookingEdit,
		PermBookingDelete,
		PermFinanceView,
		PermFinanceExport,
		PermHousekeepingView,
		PermHousekeepingEdit,
	}
}

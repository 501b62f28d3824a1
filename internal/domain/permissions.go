package domain

type Permission string

const (
	ModuleDashboard     Permission = "dashboard"
	ModuleInventory     Permission = "inventory"
	ModuleClients       Permission = "clients"
	ModuleSuppliers     Permission = "suppliers"
	ModuleProductList   Permission = "productList"
	ModuleOrders        Permission = "orders"
	ModuleReplenishment Permission = "approvisionnement"
	ModuleReports       Permission = "reports"
	ModuleSettings      Permission = "settings"
	CanAddProducts      Permission = "canAddProducts"
	CanDeleteProducts   Permission = "canDeleteProducts"
	CanEditProducts     Permission = "canEditProducts"
	CanManageSuppliers  Permission = "canManageSuppliers"
	CanManageUsers      Permission = "canManageUsers"
	CanSeeFinancials    Permission = "canSeeFinancials"
)

var allPermissions = []Permission{
	ModuleDashboard, ModuleInventory, ModuleClients, ModuleSuppliers, ModuleProductList,
	ModuleOrders, ModuleReplenishment, ModuleReports, ModuleSettings,
	CanAddProducts, CanDeleteProducts, CanEditProducts, CanManageSuppliers, CanManageUsers, CanSeeFinancials,
}

var denied = map[UserRole]map[Permission]bool{
	RoleAdmin:   {},
	RoleManager: {CanDeleteProducts: true},
	RoleSeller: {
		ModuleInventory: true, ModuleClients: true, ModuleSuppliers: true, ModuleReplenishment: true,
		ModuleReports: true, ModuleSettings: true,
		CanAddProducts: true, CanDeleteProducts: true, CanEditProducts: true,
		CanManageSuppliers: true, CanManageUsers: true, CanSeeFinancials: true,
	},
}

func (r UserRole) Can(p Permission) bool {
	blocked, ok := denied[r]
	if !ok {
		return false
	}
	return !blocked[p]
}

// Permissions lists every flag for the role, for clients that render menus.
func (r UserRole) Permissions() map[Permission]bool {
	out := make(map[Permission]bool, len(allPermissions))
	for _, p := range allPermissions {
		out[p] = r.Can(p)
	}
	return out
}

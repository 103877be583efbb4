package guard

import userdomain "brokerops/client/internal/user/domain"

// Route names an application area. The CLI maps command groups onto these the
// way the original screens mapped onto paths.
type Route string

const (
	RouteRoot            Route = "/"
	RouteLogin           Route = "/login"
	RouteOperationalHome Route = "/tracking"
	RouteAdminHome       Route = "/admin"
	RouteAdminUsers      Route = "/admin/users"
	RouteAdminClients    Route = "/admin/clients"
	RouteAuditLog        Route = "/admin/audit"
)

// AllowedRoles declares, per protected area, which roles may enter. Home
// routes always allow every role whose home they are; that exemption is what
// makes redirect loops impossible.
var AllowedRoles = map[Route][]userdomain.Role{
	RouteOperationalHome: {
		userdomain.RoleEncoder,
		userdomain.RoleBroker,
		userdomain.RoleSupervisor,
		userdomain.RoleManager,
	},
	RouteAdminHome:    {userdomain.RoleAdmin},
	RouteAdminUsers:   {userdomain.RoleAdmin},
	RouteAdminClients: {userdomain.RoleAdmin},
	RouteAuditLog:     {userdomain.RoleAdmin},
}

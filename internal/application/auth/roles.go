// Package auth contiene autenticación (bcrypt + JWT) y la verificación de roles.
package auth

// HasRole indica si actorRole está entre los roles requeridos.
// Sin roles requeridos basta con estar autenticado (rol no vacío).
func HasRole(actorRole string, required ...string) bool {
	if actorRole == "" {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if r == actorRole {
			return true
		}
	}
	return false
}

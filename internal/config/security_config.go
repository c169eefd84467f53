package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health - Public
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,

	// RentalService - Access Protected
	"/rentalhub.v1.RentalService/SubmitRentalRequest":  SecurityAccess,
	"/rentalhub.v1.RentalService/ProposeModification":  SecurityAccess,
	"/rentalhub.v1.RentalService/AcceptModification":   SecurityAccess,
	"/rentalhub.v1.RentalService/CounterPropose":       SecurityAccess,
	"/rentalhub.v1.RentalService/ApproveRentalRequest": SecurityAccess,
	"/rentalhub.v1.RentalService/DeclineRentalRequest": SecurityAccess,
	"/rentalhub.v1.RentalService/CancelRental":         SecurityAccess,
	"/rentalhub.v1.RentalService/CompleteRental":       SecurityAccess,
	"/rentalhub.v1.RentalService/PostMessage":          SecurityAccess,
	"/rentalhub.v1.RentalService/GetRental":            SecurityAccess,
	"/rentalhub.v1.RentalService/ListIncomingRequests": SecurityAccess,
	"/rentalhub.v1.RentalService/ListOutgoingRequests": SecurityAccess,

	// NotificationService - Access Protected
	"/rentalhub.v1.NotificationService/GetNotifications":     SecurityAccess,
	"/rentalhub.v1.NotificationService/MarkNotificationRead": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}

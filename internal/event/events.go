package event

type Type string

const (
	UserRegisteredEvent  Type = "UserRegisteredEvent"
	ListingCreatedEvent  Type = "ListingCreatedEvent"
	ListingSoldEvent     Type = "ListingSoldEvent"
	ListingDelistedEvent Type = "ListingDelistedEvent"
	EscrowReleasedEvent  Type = "EscrowReleasedEvent"
	EscrowRefundedEvent  Type = "EscrowRefundedEvent"
)

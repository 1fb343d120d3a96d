package tenant

type CreatedEvent struct {
	Result Tenant
}

type SubscriptionChangedEvent struct {
	Tenant *Tenant
	From   Status
	To     Status
}

func NewCreatedEvent(result *Tenant) *CreatedEvent {
	return &CreatedEvent{Result: *result}
}

func NewSubscriptionChangedEvent(t *Tenant, from, to Status) *SubscriptionChangedEvent {
	return &SubscriptionChangedEvent{Tenant: t, From: from, To: to}
}

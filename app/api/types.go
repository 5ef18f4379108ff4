package api

import (
	"newsdigest/app/database"
	"newsdigest/app/scheduler"
)

type SchedulerInterface interface {
	Trigger(name string) (any, error)
	Status() []scheduler.JobStatus
}

var _ SchedulerInterface = (*scheduler.Orchestrator)(nil)

type Handler struct {
	feedRepo         database.FeedRepository
	itemRepo         database.ItemRepository
	recipientRepo    database.RecipientRepository
	subscriptionRepo database.SubscriptionRepository
	deliveryRepo     database.DeliveryRepository
	maintenanceRepo  database.MaintenanceRepository
	scheduler        SchedulerInterface
}

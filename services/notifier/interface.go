package main

import "github.com/iulianpascalau/ui-email-notification/services/notifier/api"

type componentsHandler interface {
	GetEngine() api.NotificationEngine
	GetSender() api.Sender
	GetStore() api.Storage
}

package worker

// HandlerRegistrar subscribes event handlers on a dispatcher.
type HandlerRegistrar interface {
	RegisterHandlers()
}

// StartNotificationWorker registers event handlers once at startup.
func StartNotificationWorker(registrars ...HandlerRegistrar) {
	for _, registrar := range registrars {
		if registrar == nil {
			continue
		}
		registrar.RegisterHandlers()
	}
}

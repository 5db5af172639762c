package cli

import (
	"log/slog"
	"time"

	"venuedash/internal/app/commands"
	"venuedash/internal/app/dto"
	availabilityapp "venuedash/internal/app/handlers/availability"
	bookingapp "venuedash/internal/app/handlers/booking"
	venuesapp "venuedash/internal/app/handlers/venues"
	"venuedash/internal/app/middleware"
	"venuedash/internal/app/outbox"
	"venuedash/internal/app/policies"
	"venuedash/internal/app/queries"
	"venuedash/internal/app/uow"
	ginserver "venuedash/internal/infra/http/gin"
)

// deps are the storage-specific collaborators picked by the storage driver.
type deps struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Idempotency middleware.IdempotencyStore
	Locker      policies.Locker
	Sessions    policies.SessionStore
	Notifier    policies.Notifier
	Logger      *slog.Logger
	Now         func() time.Time
}

type application struct {
	commands commands.Bus
	queries  queries.Bus
	handlers ginserver.Handlers
}

func buildApplication(d deps) application {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = policies.NopNotifier{}
	}
	encoder := outbox.JSONEventEncoder{}
	committer := &availabilityapp.Committer{
		Locker:   d.Locker,
		Outbox:   d.Outbox,
		Encoder:  encoder,
		Notifier: notifier,
		Logger:   logger,
		Now:      d.Now,
	}
	sessions := &availabilityapp.SessionHandlers{Store: d.Sessions, Committer: committer, Now: d.Now}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, availabilityapp.CommitBlockedDatesCommand{}.Key(),
		&availabilityapp.CommitBlockedDatesHandler{Committer: committer, Now: d.Now})
	commands.RegisterHandler(commandBus, availabilityapp.BlockBookingDatesCommand{}.Key(),
		&availabilityapp.BlockBookingDatesHandler{Committer: committer, Now: d.Now})
	commands.RegisterHandler(commandBus, availabilityapp.OpenSessionCommand{}.Key(),
		commands.HandlerFunc[availabilityapp.OpenSessionCommand, *dto.Session](sessions.Open))
	commands.RegisterHandler(commandBus, availabilityapp.ToggleDateCommand{}.Key(),
		commands.HandlerFunc[availabilityapp.ToggleDateCommand, *dto.Session](sessions.Toggle))
	commands.RegisterHandler(commandBus, availabilityapp.SetModeCommand{}.Key(),
		commands.HandlerFunc[availabilityapp.SetModeCommand, *dto.Session](sessions.SetMode))
	commands.RegisterHandler(commandBus, availabilityapp.CommitSessionCommand{}.Key(),
		commands.HandlerFunc[availabilityapp.CommitSessionCommand, *dto.CommitResult](sessions.Commit))
	commands.RegisterHandler(commandBus, bookingapp.UpdateBookingStatusCommand{}.Key(),
		&bookingapp.UpdateBookingStatusHandler{Outbox: d.Outbox, Encoder: encoder, Logger: logger, Now: d.Now})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(),
		&availabilityapp.GetCalendarHandler{UoWFactory: d.UoWFactory, Sessions: d.Sessions, Now: d.Now})
	queries.RegisterHandler(queryBus, availabilityapp.GetSessionQuery{}.Key(),
		queries.HandlerFunc[availabilityapp.GetSessionQuery, dto.Session](sessions.Get))
	queries.RegisterHandler(queryBus, venuesapp.ListVenuesQuery{}.Key(), &venuesapp.ListVenuesHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler(queryBus, venuesapp.GetVenueQuery{}.Key(), &venuesapp.GetVenueHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListVenueBookingsQuery{}.Key(),
		&bookingapp.ListVenueBookingsHandler{UoWFactory: d.UoWFactory, Logger: logger})

	authz := middleware.VenueOwnership{UoWFactory: d.UoWFactory}
	var idempotency middleware.CommandMiddleware
	if d.Idempotency != nil {
		idempotency = middleware.Idempotency(d.Idempotency, nil)
	}
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger),
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Authorization(authz),
		middleware.Transaction(d.UoWFactory, nil),
		idempotency,
		middleware.OutboxFlush(d.Outbox),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(middleware.SelfValidator{}),
		middleware.QueryAuthorization(authz),
	)

	return application{
		commands: commandBusWithMiddleware,
		queries:  queryBusWithMiddleware,
		handlers: ginserver.Handlers{
			Venue:        ginserver.VenueHandler{Queries: queryBusWithMiddleware, Logger: logger},
			Availability: ginserver.AvailabilityHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
			Session:      ginserver.SessionHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
			Booking:      ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
		},
	}
}

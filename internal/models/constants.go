package models

const (
	BookingPending   = "pending"
	BookingApproved  = "approved"
	BookingRejected  = "rejected"
	BookingCancelled = "cancelled"
)

const (
	StatusAvailable       = "available"
	StatusBooked          = "booked"
	StatusPartiallyBooked = "partially_booked"
	StatusUnavailable     = "unavailable"
	StatusMaintenance     = "maintenance"
)

const (
	ItemKindBooking = "booking"
	ItemKindBlock   = "block"
)

const (
	// DefaultSessionTTL время жизни сессии владельца в Redis
	DefaultSessionTTL = 24 * 60 * 60 // 24 часа в секундах

	// RateLimitRequests количество запросов в окне для публичных эндпоинтов
	RateLimitRequests = 60

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах

	// ExportQueueSize размер очереди воркера экспорта
	ExportQueueSize = 100

	// DefaultExportRangeMonthsBefore количество месяцев для экспорта по умолчанию
	DefaultExportRangeMonthsBefore = 1
	DefaultExportRangeMonthsAfter  = 2

	// MaxBookingDays максимальная глубина бронирования вперёд
	MaxBookingDays = 365
)

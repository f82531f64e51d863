package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"

	ActionRefresh         = "session_refresh"
	ActionAccept          = "session_accept"
	ActionAdvanceStatus   = "session_advance_status"
	ActionPush            = "session_push"
	ActionLocationReport  = "session_location_report"
	ActionSessionTeardown = "session_teardown"
)

package constants

// Имена очередей
const (
	QueueSearchTasks         = "tasks_for_search_flatfox"
	QueueProcessedProperties = "processed_properties"
)

// Ключи маршрутизации
const (
	RoutingKeySearchTasks         = "flatfox.search.tasks"
	RoutingKeyProcessedProperties = "db.properties.save"
	RoutingKeyTaskResults         = "notify.task.result"
)

const (
	FinalDLXExchangeForSearchTasks   = "flatfox_search_tasks_final_dlx"
	FinalDLQForSearchTasks           = "flatfox_search_tasks_final_dlq"
	FinalDLQRoutingKeyForSearchTasks = "flatfox_search_tasks.dlq.key"
)

// Package schemas содержит JSON-схемы событий, которыми сервис
// обменивается с остальной системой через RabbitMQ.
package schemas

import "embed"

//go:embed events
var SchemasFS embed.FS

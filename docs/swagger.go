// Package docs Geosearch Service API.
//
// Серверная часть restaurant-finder: оркестратор гео-поиска.
// Координирует получение позиции устройства с деградацией до IP-геолокации,
// ведёт ограниченный по TTL и размеру кеш результатов, сериализует и
// отменяет пересекающиеся поисковые запросы под debounce и rate limit,
// и держит маркеры карты и список результатов в согласованном состоянии.
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs

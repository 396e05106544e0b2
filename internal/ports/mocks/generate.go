// Пакет mocks — сгенерированные gomock-реализации портов для тестов.
package mocks

//go:generate mockgen -source=../order_gateway.go -destination=./mock_order_gateway.go -package=mocks
//go:generate mockgen -source=../order_cache.go -destination=./mock_order_cache.go -package=mocks
//go:generate mockgen -source=../notifier.go -destination=./mock_notifier.go -package=mocks
//go:generate mockgen -source=../event_publisher.go -destination=./mock_event_publisher.go -package=mocks
//go:generate mockgen -source=../validator.go -destination=./mock_validator.go -package=mocks

// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — соединение с автоматическим reconnect
//   - topology.go   — объявление exchange, очереди событий и DLQ
//   - publisher.go  — публикация JSON сообщений
//   - consumer.go   — Consumer как task.EventSource[*Delivery]
//
// Consumer отдаёт сообщения по одному через Read. Подтверждение —
// ответственность обработчика; Acking оборачивает обработчик так, что
// успех подтверждает сообщение, а ошибка отправляет его в DLQ.
//
//	consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{Queue: "srota.events"})
//	events, err := task.NewEvent(task.EventConfig[*mq.Delivery]{
//	    Name:    "amqp-events",
//	    Source:  func() (task.EventSource[*mq.Delivery], error) { return consumer, nil },
//	    Handler: mq.Acking(handle),
//	})
package mq

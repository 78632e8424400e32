// Package steps содержит готовые шаги для pipeline задач.
//
// Каждый конструктор возвращает task.Step, который можно передать в
// task.PipelineConfig или builder.AddPipeline(...).Then(...):
//
//	fetch, err := steps.HTTP(steps.HTTPConfig{
//	    Method: http.MethodGet,
//	    URL:    "https://api.example.com/health",
//	})
//
//	p, err := task.NewPipeline(task.PipelineConfig{
//	    Name:     "sync",
//	    Steps:    []task.Step{fetch, steps.Delay(time.Second)},
//	    Interval: time.Minute,
//	})
//
// Доступные шаги:
//
//   - Delay — пауза, прерываемая отменой контекста
//   - HTTP — HTTP запрос с таймаутом; статус не 2xx считается ошибкой
//   - Parallel — несколько шагов одновременно, первая ошибка отменяет остальные
//
// Шаги возвращают ctx.Err() при отмене; pipeline трактует это как
// штатную остановку.
package steps

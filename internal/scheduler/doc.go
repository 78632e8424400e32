// Package scheduler вычисляет моменты запуска по cron-выражениям.
//
// Используется cron-задачами (task.Cron): задача спрашивает у
// Schedule следующий момент запуска и спит до него.
//
//	sched, err := scheduler.Parse("*/5 * * * *", "Europe/Moscow")
//	if err != nil {
//	    return err
//	}
//	next, ok := sched.Next(time.Now())
//
// Формат — стандартные пять полей (minute hour dom month dow),
// а также дескрипторы (@hourly, @every 10s).
package scheduler

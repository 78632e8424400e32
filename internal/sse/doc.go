// Package sse разбирает поток text/event-stream.
//
// Поддерживается подмножество грамматики:
//   - "data:"  — устанавливает (перезаписывает) данные события
//   - "event:" — тип события
//   - "id:"    — идентификатор события
//   - пустая строка — граница события
//
// Многострочные data и строки-комментарии (":") не поддерживаются:
// повторный data: перезаписывает значение, прочие строки игнорируются.
//
//	dec := sse.NewDecoder(resp.Body)
//	for {
//	    ev, err := dec.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    ...
//	}
package sse

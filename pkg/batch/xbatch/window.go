package xbatch

// item 队列中的一个请求：载荷与它的结果句柄
type item[P, T any] struct {
	payload P
	future  *Future[T]
}

// window 当前累积中的批窗口
//
// 只被 drain goroutine 访问，密封后移交 worker pool，
// 移交后 drain 侧不再持有引用，因此无需加锁。
type window[P, T any] struct {
	items  []item[P, T]
	sealed bool
}

func newWindow[P, T any](capacity int) *window[P, T] {
	return &window[P, T]{items: make([]item[P, T], 0, capacity)}
}

// append 追加请求；密封后的窗口不可再追加
func (w *window[P, T]) append(it item[P, T]) bool {
	if w.sealed {
		return false
	}
	w.items = append(w.items, it)
	return true
}

// seal 密封窗口，此后内容不可变
func (w *window[P, T]) seal() {
	w.sealed = true
}

func (w *window[P, T]) len() int {
	return len(w.items)
}

// payloads 返回按提交顺序排列的载荷切片
func (w *window[P, T]) payloads() []P {
	ps := make([]P, len(w.items))
	for i, it := range w.items {
		ps[i] = it.payload
	}
	return ps
}

// resolve 以后端结果完成每个 Future
// results 长度必须等于窗口大小，调用方先行校验。
func (w *window[P, T]) resolve(results []T) {
	for i, it := range w.items {
		it.future.resolve(results[i])
	}
}

// fail 以同一个错误失败窗口内全部 Future
func (w *window[P, T]) fail(err error) {
	for _, it := range w.items {
		it.future.fail(err)
	}
}

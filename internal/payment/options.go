package payment

import "paygate/internal/lock"

type options struct {
	locker      lock.Locker
	listeners   []Listener
	callbackLog CallbackLog
}

type Option func(*options)

// WithLocker sets the lock guarding each transaction during a callback.
// Contexts built by one Factory share it.
func WithLocker(l lock.Locker) Option {
	return func(o *options) { o.locker = l }
}

func WithListeners(ls ...Listener) Option {
	return func(o *options) { o.listeners = append(o.listeners, ls...) }
}

func WithCallbackLog(cl CallbackLog) Option {
	return func(o *options) { o.callbackLog = cl }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.locker == nil {
		o.locker = lock.NewKeyedMutex()
	}
	return o
}

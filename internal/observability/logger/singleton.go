package logger

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance atomic.Pointer[zap.Logger]
)

// Init inicializa el singleton. Solo la primera llamada tiene efecto.
func Init(cfg Config) {
	once.Do(func() {
		instance.CompareAndSwap(nil, build(cfg))
	})
}

// Set reemplaza el singleton. Pensado para tests y para main cuando
// necesita reconfigurar después de leer la config.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	once.Do(func() {})
	instance.Store(l)
}

// L retorna el logger singleton (dev/info si nadie llamó a Init).
func L() *zap.Logger {
	if l := instance.Load(); l != nil {
		return l
	}
	Init(Config{Env: "dev", Level: "info"})
	return instance.Load()
}

// Named retorna un logger con nombre de componente.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// With retorna un logger con campos adicionales.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// Sync flushea buffers pendientes. Llamar con defer en main.
func Sync() error {
	if l := instance.Load(); l != nil {
		return l.Sync()
	}
	return nil
}

package fmi

import (
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

// The FMU-side logger callback crosses back into Go carrying only the
// opaque componentEnvironment token it was handed at instantiation, so a
// small registry maps that token back to the *log.Logger an instance was
// built with (§4.3 "Logger trampoline").
var (
	loggerRegistry  sync.Map // uintptr -> *registeredLogger
	nextLoggerToken uint64
)

type registeredLogger struct {
	logger *charmlog.Logger
	name   string
}

// registerLogger reserves a fresh token for logger/name and returns it for
// use as a CallbackFunctions.ComponentEnvironment value. It is never a real
// pointer — only ever compared for identity by our own shim.
func registerLogger(logger *charmlog.Logger, name string) uintptr {
	token := uintptr(atomic.AddUint64(&nextLoggerToken, 1))
	loggerRegistry.Store(token, &registeredLogger{logger: logger, name: name})
	return token
}

func unregisterLogger(token uintptr) {
	loggerRegistry.Delete(token)
}

// dispatchLoggerCallback is invoked (indirectly, through the cgo shim) once
// per fmi2CallbackLogger call the FMU makes. instanceName/category/message
// are already-formatted Go strings by the time they reach here.
func dispatchLoggerCallback(token uintptr, instanceName string, status ABIStatus, category, message string) {
	v, ok := loggerRegistry.Load(token)
	if !ok {
		return
	}
	rl := v.(*registeredLogger)
	if rl.logger == nil {
		return
	}
	log := rl.logger.With("instance", rl.name, "category", category)
	switch status {
	case StatusOK, StatusPending:
		log.Debug(message)
	case StatusWarning, StatusDiscard:
		log.Warn(message)
	default:
		log.Error(message)
	}
}

// ModuleLogger returns a child logger scoped to the fmi package, following
// the host application's "m:<name>" prefix convention.
func ModuleLogger(parent *charmlog.Logger, name string) *charmlog.Logger {
	if parent == nil {
		return nil
	}
	return parent.WithPrefix("m:" + name)
}

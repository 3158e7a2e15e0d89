package logger

import (
	"sort"
	"sync"
)

// named holds loggers registered by component or service name.
var named sync.Map

// Register stores l under name, replacing any previous entry.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered under name, or the global logger tagged
// with that component name.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

// Names lists the registered logger names in order.
func Names() []string {
	var names []string
	named.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}

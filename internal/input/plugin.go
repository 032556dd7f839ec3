package input

import (
	"context"
	"fmt"

	"github.com/ayusman/mudra/internal/plugin"
)

// Plugin actions understood by keyboard plugins.
const (
	PluginActionPress = "press"
	PluginActionType  = "type"
)

// PluginInjector forwards key presses and typing to an external keyboard
// plugin and delegates pointer operations to another Injector.
type PluginInjector struct {
	Injector

	executor *plugin.Executor
	press    *plugin.Plugin
	typer    *plugin.Plugin
	source   string
}

// NewPluginInjector finds plugins for the press and type actions in mgr.
// mouse handles every pointer operation.
func NewPluginInjector(mouse Injector, mgr *plugin.Manager, executor *plugin.Executor) (*PluginInjector, error) {
	press, err := mgr.ForAction(PluginActionPress)
	if err != nil {
		return nil, fmt.Errorf("find %s plugin: %w", PluginActionPress, err)
	}
	typer, err := mgr.ForAction(PluginActionType)
	if err != nil {
		return nil, fmt.Errorf("find %s plugin: %w", PluginActionType, err)
	}

	return &PluginInjector{
		Injector: mouse,
		executor: executor,
		press:    press,
		typer:    typer,
		source:   "voice",
	}, nil
}

func (p *PluginInjector) PressKey(name string) error {
	return p.executor.Call(context.Background(), p.press, p.source, PluginActionPress, map[string]string{"key": name})
}

func (p *PluginInjector) TypeText(text string) error {
	return p.executor.Call(context.Background(), p.typer, p.source, PluginActionType, map[string]string{"text": text})
}

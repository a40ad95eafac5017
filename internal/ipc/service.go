package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/SoarinFerret/TimerWarden/internal/category"
	"github.com/SoarinFerret/TimerWarden/internal/dedup"
	"github.com/SoarinFerret/TimerWarden/internal/dispatch"
	"github.com/SoarinFerret/TimerWarden/internal/engine"
	"github.com/SoarinFerret/TimerWarden/internal/history"
	"github.com/SoarinFerret/TimerWarden/internal/kv"
	"github.com/SoarinFerret/TimerWarden/internal/state"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

// Modes is implemented by *engine.Engine.
type Modes interface {
	Mode() engine.Mode
	SetMode(ctx context.Context, m engine.Mode) error
}

// TimerManager is the object exported at ObjectPath. Every exported method
// with a trailing *dbus.Error becomes a D-Bus method.
type TimerManager struct {
	Store        *state.Manager
	Modal        *dispatch.Modal
	HistoryLog   *history.Log
	CategoryList *category.List
	Engine       Modes
	Storage      kv.Store
	Registry     *dedup.Registry
	Log          *slog.Logger
}

func (s *TimerManager) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// AddTimer validates and adds an idle timer. alertAt 0 means no alert.
func (s *TimerManager) AddTimer(name, category string, duration, alertAt int32) (string, *dbus.Error) {
	if err := timer.Validate(name, category, int(duration), int(alertAt)); err != nil {
		return "", toDBusError(err)
	}
	id := s.Store.HandleAdd(timer.New(name, category, int(duration), int(alertAt)))
	s.logger().Info("timer added", "timer", id, "name", name, "category", category)
	return id, nil
}

func (s *TimerManager) StartTimer(id string) *dbus.Error {
	return toDBusError(s.Store.HandleStart(id))
}

func (s *TimerManager) PauseTimer(id string) *dbus.Error {
	return toDBusError(s.Store.HandlePause(id))
}

func (s *TimerManager) ResetTimer(id string) *dbus.Error {
	return toDBusError(s.Store.HandleReset(id))
}

func (s *TimerManager) RemoveTimer(id string) *dbus.Error {
	return toDBusError(s.Store.HandleRemove(id))
}

// StartCategory starts every timer in category and returns how many.
func (s *TimerManager) StartCategory(category string) (int32, *dbus.Error) {
	return int32(s.Store.HandleCategory(category, timer.Start)), nil
}

func (s *TimerManager) PauseCategory(category string) (int32, *dbus.Error) {
	return int32(s.Store.HandleCategory(category, timer.Pause)), nil
}

func (s *TimerManager) ResetCategory(category string) (int32, *dbus.Error) {
	return int32(s.Store.HandleCategory(category, timer.Reset)), nil
}

// ListTimers returns the active timers grouped by category, as JSON.
func (s *TimerManager) ListTimers() (string, *dbus.Error) {
	return encode(timer.GroupByCategory(timer.Active(s.Store.Timers())))
}

// GetTimers returns the whole collection, as JSON.
func (s *TimerManager) GetTimers() (string, *dbus.Error) {
	return encode(s.Store.Timers())
}

func (s *TimerManager) GetModal() (string, *dbus.Error) {
	return encode(s.Modal.State())
}

// DismissCompletion hides the modal and clears completed timers. It
// returns the ids that were removed.
func (s *TimerManager) DismissCompletion() ([]string, *dbus.Error) {
	removed := s.Modal.Hide()
	if removed == nil {
		removed = []string{}
	}
	return removed, nil
}

func (s *TimerManager) GetStatus() (string, *dbus.Error) {
	running := s.Store.RunningIDs()
	if running == nil {
		running = []string{}
	}
	return encode(Status{
		Mode:    string(s.Engine.Mode()),
		Timers:  s.Store.Summary(),
		Running: running,
	})
}

func (s *TimerManager) History() (string, *dbus.Error) {
	return encode(s.HistoryLog.Items(context.Background()))
}

func (s *TimerManager) ClearHistory() *dbus.Error {
	return toDBusError(s.HistoryLog.Clear(context.Background()))
}

// Export renders history and current timers as "json" or "yaml".
func (s *TimerManager) Export(format string) (string, *dbus.Error) {
	doc := s.HistoryLog.Export(context.Background(), s.Store.Timers())
	data, err := history.Render(doc, format)
	if err != nil {
		return "", dbus.NewError(ErrorInvalidInput, []interface{}{err.Error()})
	}
	return string(data), nil
}

func (s *TimerManager) Categories() ([]string, *dbus.Error) {
	return s.CategoryList.List(context.Background()), nil
}

func (s *TimerManager) AddCategory(name string) (string, *dbus.Error) {
	added, err := s.CategoryList.Add(context.Background(), name)
	return added, toDBusError(err)
}

func (s *TimerManager) RemoveCategory(name string) *dbus.Error {
	return toDBusError(s.CategoryList.Remove(context.Background(), name, s.Store.Timers()))
}

func (s *TimerManager) SetMode(mode string) *dbus.Error {
	m, err := engine.ParseMode(mode)
	if err != nil {
		return dbus.NewError(ErrorInvalidInput, []interface{}{err.Error()})
	}
	return toDBusError(s.Engine.SetMode(context.Background(), m))
}

// ClearAllData wipes storage and empties the collection.
func (s *TimerManager) ClearAllData() *dbus.Error {
	if err := s.Storage.Clear(context.Background()); err != nil {
		return toDBusError(fmt.Errorf("clear storage: %w", err))
	}
	s.Store.Dispatch(timer.Load([]timer.Timer{}))
	s.Modal.Hide()
	s.Registry.Reset()
	s.logger().Warn("all data cleared")
	return nil
}

func encode(v any) (string, *dbus.Error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

// Serve exports tm on conn under ServiceName and blocks until ctx is done.
func Serve(ctx context.Context, conn *dbus.Conn, tm *TimerManager) error {
	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("name %s already taken", ServiceName)
	}

	if err := conn.Export(tm, dbus.ObjectPath(ObjectPath), InterfaceName); err != nil {
		return fmt.Errorf("failed to export interface: %w", err)
	}
	node := &introspect.Node{
		Name: ObjectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: InterfaceName, Methods: introspect.Methods(tm)},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), dbus.ObjectPath(ObjectPath), "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspection: %w", err)
	}

	<-ctx.Done()
	if _, err := conn.ReleaseName(ServiceName); err != nil {
		tm.logger().Warn("failed to release bus name", "error", err)
	}
	return nil
}

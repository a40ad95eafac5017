package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/TimerWarden/internal/dispatch"
	"github.com/SoarinFerret/TimerWarden/internal/history"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

// Client calls a running daemon.
type Client struct {
	obj dbus.BusObject
}

func NewClient(conn *dbus.Conn) *Client {
	return &Client{obj: conn.Object(ServiceName, dbus.ObjectPath(ObjectPath))}
}

func (c *Client) call(method string, out []interface{}, args ...interface{}) error {
	call := c.obj.Call(InterfaceName+"."+method, 0, args...)
	if call.Err != nil {
		return fmt.Errorf("%s: %s", method, Message(call.Err))
	}
	if len(out) == 0 {
		return nil
	}
	return call.Store(out...)
}

func (c *Client) callJSON(method string, v any, args ...interface{}) error {
	var raw string
	if err := c.call(method, []interface{}{&raw}, args...); err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), v)
}

func (c *Client) AddTimer(name, category string, duration, alertAt int) (string, error) {
	var id string
	err := c.call("AddTimer", []interface{}{&id}, name, category, int32(duration), int32(alertAt))
	return id, err
}

func (c *Client) StartTimer(id string) error  { return c.call("StartTimer", nil, id) }
func (c *Client) PauseTimer(id string) error  { return c.call("PauseTimer", nil, id) }
func (c *Client) ResetTimer(id string) error  { return c.call("ResetTimer", nil, id) }
func (c *Client) RemoveTimer(id string) error { return c.call("RemoveTimer", nil, id) }

// CategoryAction runs StartCategory, PauseCategory or ResetCategory.
func (c *Client) CategoryAction(method, category string) (int, error) {
	var n int32
	err := c.call(method, []interface{}{&n}, category)
	return int(n), err
}

func (c *Client) ListTimers() ([]timer.Group, error) {
	var groups []timer.Group
	err := c.callJSON("ListTimers", &groups)
	return groups, err
}

func (c *Client) GetTimers() ([]timer.Timer, error) {
	var timers []timer.Timer
	err := c.callJSON("GetTimers", &timers)
	return timers, err
}

func (c *Client) GetModal() (dispatch.ModalState, error) {
	var m dispatch.ModalState
	err := c.callJSON("GetModal", &m)
	return m, err
}

func (c *Client) DismissCompletion() ([]string, error) {
	var ids []string
	err := c.call("DismissCompletion", []interface{}{&ids})
	return ids, err
}

func (c *Client) GetStatus() (Status, error) {
	var s Status
	err := c.callJSON("GetStatus", &s)
	return s, err
}

func (c *Client) History() ([]history.Item, error) {
	var items []history.Item
	err := c.callJSON("History", &items)
	return items, err
}

func (c *Client) ClearHistory() error { return c.call("ClearHistory", nil) }

func (c *Client) Export(format string) (string, error) {
	var out string
	err := c.call("Export", []interface{}{&out}, format)
	return out, err
}

func (c *Client) Categories() ([]string, error) {
	var names []string
	err := c.call("Categories", []interface{}{&names})
	return names, err
}

func (c *Client) AddCategory(name string) (string, error) {
	var added string
	err := c.call("AddCategory", []interface{}{&added}, name)
	return added, err
}

func (c *Client) RemoveCategory(name string) error { return c.call("RemoveCategory", nil, name) }
func (c *Client) SetMode(mode string) error        { return c.call("SetMode", nil, mode) }
func (c *Client) ClearAllData() error              { return c.call("ClearAllData", nil) }

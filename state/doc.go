// Package state holds the data a run carries: the shared context and its
// values, the run record, and the execution log.
//
// # Context
//
// Context maps string keys to Value, a closed union of string, int, float,
// bool, list and nested map. Tools add whatever keys they need while the
// value kinds stay known:
//
//	c := state.NewContext()
//	c.Set("code", state.String("def a():\n"))
//	c.Set("threshold", state.Int(75))
//
//	count := c.Int("function_count", 0)
//
// # Copies
//
// Clone on Context, Value and RunState is always deep. The engine hands
// tools a clone and records clones in the log, so a log entry never changes
// after it is written.
//
// # Routing representation
//
// Value.String is the text a node's route key value is matched with:
//
//	state.String("finish").String() // "finish"
//	state.Int(2).String()           // "2"
//	state.Float(2).String()         // "2.0"
//	state.Float(1e6).String()       // "1000000.0"
//	state.Float(1e16).String()      // "1e+16"
//	state.Bool(true).String()       // "True"
package state

package hub

import (
	"go.uber.org/multierr"

	"dispatchd/pkg/dispatcher"
	"dispatchd/pkg/types"
)

// CreateChannel creates a named channel and attaches the given sinks in
// order. Every sink must exist.
func (h *Hub) CreateChannel(name string, sinks ...string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if err := validName(name); err != nil {
		return err
	}
	if _, ok := h.channels[name]; ok {
		return alreadyExistsError{kind: "channel", name: name}
	}
	attach := make([]Sink, 0, len(sinks))
	for _, sn := range sinks {
		s, ok := h.sinks[sn]
		if !ok {
			return ErrSinkNotFound(sn)
		}
		attach = append(attach, s)
	}
	c := h.newChannel(name)
	for _, s := range attach {
		c.d.AddListener(s)
	}
	h.channels[name] = c
	channelsGauge.Inc()
	h.log.Info().Str("channel", name).Strs("sinks", sinks).Msg("channel created")
	h.lifecycle(EventChannelCreated, map[string]any{"channel": name, "sinks": sinks})
	return nil
}

// CloneChannel creates dst registered with the same sinks, in the same order,
// as src.
func (h *Hub) CloneChannel(src, dst string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	from, ok := h.channels[src]
	if !ok {
		return ErrChannelNotFound(src)
	}
	if err := validName(dst); err != nil {
		return err
	}
	if _, ok := h.channels[dst]; ok {
		return alreadyExistsError{kind: "channel", name: dst}
	}
	c := &channelEntry{
		name: dst,
		d: from.d.Clone(
			dispatcher.WithName(dst),
			dispatcher.WithLogger(h.log.With().Str("channel", dst).Logger()),
		),
	}
	h.channels[dst] = c
	channelsGauge.Inc()
	h.log.Info().Str("channel", dst).Str("from", src).Msg("channel cloned")
	h.lifecycle(EventChannelCloned, map[string]any{"channel": dst, "from": src})
	return nil
}

// AssignChannel replaces dst's sinks with src's. Each sink dropped from dst
// is notified that its publisher died.
func (h *Hub) AssignChannel(dst, src string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	to, ok := h.channels[dst]
	if !ok {
		return ErrChannelNotFound(dst)
	}
	if to.system {
		return ErrInvalid("channel " + SystemChannel + " is reserved")
	}
	from, ok := h.channels[src]
	if !ok {
		return ErrChannelNotFound(src)
	}
	to.d.Assign(from.d)
	h.log.Info().Str("channel", dst).Str("from", src).Msg("channel assigned")
	h.lifecycle(EventChannelAssigned, map[string]any{"channel": dst, "from": src})
	return nil
}

// CloseChannel closes and forgets a channel. Attached sinks are notified
// that their publisher died.
func (h *Hub) CloseChannel(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	c, ok := h.channels[name]
	if !ok {
		return ErrChannelNotFound(name)
	}
	if c.system {
		return ErrInvalid("channel " + SystemChannel + " is reserved")
	}
	c.d.Close()
	delete(h.channels, name)
	channelsGauge.Dec()
	h.log.Info().Str("channel", name).Msg("channel closed")
	h.lifecycle(EventChannelClosed, map[string]any{"channel": name})
	return nil
}

// Emit delivers one event to every sink attached to channel, in attachment
// order. Sink panics do not fail the call; they are reported in
// EmitResponse.Failures.
func (h *Hub) Emit(channel string, ev types.Event) (types.EmitResponse, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return types.EmitResponse{}, ErrClosed
	}
	c, ok := h.channels[channel]
	if !ok {
		return types.EmitResponse{}, ErrChannelNotFound(channel)
	}
	if c.system {
		return types.EmitResponse{}, ErrInvalid("channel " + SystemChannel + " is reserved")
	}
	if ev.Name == "" {
		return types.EmitResponse{}, ErrInvalid("event name is required")
	}
	ev.Channel = channel
	ev = ev.Normalize(h.now())

	resp := types.EmitResponse{Event: ev, Delivered: c.d.Len()}
	if err := c.d.Emit(ev); err != nil {
		resp.Failures = h.recordPanics(c, err)
	}
	c.emitted++
	h.emittedTotal++
	emitsTotal.WithLabelValues(channel).Inc()
	return resp, nil
}

// recordPanics accounts for the panics of one emit and returns their
// messages. Caller holds h.mu.
func (h *Hub) recordPanics(c *channelEntry, err error) []string {
	errs := multierr.Errors(err)
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	h.panicsTotal += uint64(len(errs))
	listenerPanicsTotal.WithLabelValues(c.name).Add(float64(len(errs)))
	h.lastErr = err.Error()
	return msgs
}

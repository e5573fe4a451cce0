package hub

import (
	"dispatchd/pkg/types"
)

// Channels lists every open channel, sorted by name.
func (h *Hub) Channels() []types.ChannelInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.channelInfos()
}

// Sinks lists every open sink, sorted by name.
func (h *Hub) Sinks() []types.SinkInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sinkInfos()
}

// Ready reports whether the hub accepts requests.
func (h *Hub) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.closed
}

// Status builds a detailed status response for /status.
func (h *Hub) Status() types.StatusResponse {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	return types.StatusResponse{
		Channels:       h.channelInfos(),
		Sinks:          h.sinkInfos(),
		EmittedTotal:   h.emittedTotal,
		PanicsTotal:    h.panicsTotal,
		UptimeSeconds:  int64(now.Sub(h.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
		LastError:      h.lastErr,
	}
}

func (h *Hub) channelInfos() []types.ChannelInfo {
	out := make([]types.ChannelInfo, 0, len(h.channels))
	for _, name := range h.sortedChannelNames() {
		c := h.channels[name]
		info := types.ChannelInfo{Name: c.name, Emitted: c.emitted, System: c.system, Sinks: []string{}}
		for _, l := range c.d.Listeners() {
			if s, ok := l.(Sink); ok {
				info.Sinks = append(info.Sinks, s.Name())
			}
		}
		out = append(out, info)
	}
	return out
}

func (h *Hub) sinkInfos() []types.SinkInfo {
	out := make([]types.SinkInfo, 0, len(h.sinks))
	for _, name := range h.sortedSinkNames() {
		out = append(out, h.sinks[name].Info())
	}
	return out
}

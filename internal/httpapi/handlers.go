package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dispatchd/internal/hub"
	"dispatchd/pkg/types"
)

type handlers struct {
	svc Service
}

// listChannels godoc
// @Summary      List channels
// @Tags         channels
// @Produce      json
// @Success      200  {object}  types.ChannelsResponse
// @Router       /channels [get]
func (h *handlers) listChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ChannelsResponse{Channels: h.svc.Channels()})
}

// createChannel godoc
// @Summary      Create a channel
// @Description  Creates a channel and attaches the listed sinks in order.
// @Tags         channels
// @Accept       json
// @Produce      json
// @Param        body  body      types.CreateChannelRequest  true  "channel"
// @Success      201   {object}  types.ChannelInfo
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Router       /channels [post]
func (h *handlers) createChannel(w http.ResponseWriter, r *http.Request) {
	var req types.CreateChannelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.CreateChannel(req.Name, req.Sinks...); err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeChannel(w, http.StatusCreated, req.Name)
}

// closeChannel godoc
// @Summary      Close a channel
// @Description  Attached sinks are notified that their publisher died.
// @Tags         channels
// @Param        name  path  string  true  "channel name"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /channels/{name} [delete]
func (h *handlers) closeChannel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseChannel(chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// cloneChannel godoc
// @Summary      Clone a channel
// @Description  Creates a new channel registered with the same sinks, in the same order.
// @Tags         channels
// @Accept       json
// @Produce      json
// @Param        name  path      string                     true  "source channel"
// @Param        body  body      types.CloneChannelRequest  true  "new channel"
// @Success      201   {object}  types.ChannelInfo
// @Failure      404   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Router       /channels/{name}/clone [post]
func (h *handlers) cloneChannel(w http.ResponseWriter, r *http.Request) {
	var req types.CloneChannelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.CloneChannel(chi.URLParam(r, "name"), req.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeChannel(w, http.StatusCreated, req.Name)
}

// assignChannel godoc
// @Summary      Replace a channel's sinks
// @Description  Drops every sink of the channel (notifying each) and registers the sinks of another channel.
// @Tags         channels
// @Accept       json
// @Produce      json
// @Param        name  path      string                      true  "target channel"
// @Param        body  body      types.AssignChannelRequest  true  "source channel"
// @Success      200   {object}  types.ChannelInfo
// @Failure      404   {object}  types.ErrorResponse
// @Router       /channels/{name}/assign [put]
func (h *handlers) assignChannel(w http.ResponseWriter, r *http.Request) {
	var req types.AssignChannelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.svc.AssignChannel(name, req.From); err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeChannel(w, http.StatusOK, name)
}

// emit godoc
// @Summary      Emit an event
// @Description  Delivers the event synchronously to every attached sink, in attachment order.
// @Tags         channels
// @Accept       json
// @Produce      json
// @Param        name  path      string             true  "channel name"
// @Param        body  body      types.EmitRequest  true  "event"
// @Success      200   {object}  types.EmitResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Router       /channels/{name}/emit [post]
func (h *handlers) emit(w http.ResponseWriter, r *http.Request) {
	var req types.EmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := chi.URLParam(r, "name")
	debugEvent(r, name, req.Name, req.Payload)
	resp, err := h.svc.Emit(name, types.Event{ID: req.ID, Name: req.Name, Payload: req.Payload})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// attach godoc
// @Summary      Attach a sink
// @Description  Appends the sink to the channel's delivery order. Attaching twice delivers twice.
// @Tags         channels
// @Param        name  path  string  true  "channel name"
// @Param        sink  path  string  true  "sink name"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /channels/{name}/sinks/{sink} [put]
func (h *handlers) attach(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Attach(chi.URLParam(r, "name"), chi.URLParam(r, "sink")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// detach godoc
// @Summary      Detach a sink
// @Description  Removes one registration of the sink. Not an error when it is not attached.
// @Tags         channels
// @Param        name  path  string  true  "channel name"
// @Param        sink  path  string  true  "sink name"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /channels/{name}/sinks/{sink} [delete]
func (h *handlers) detach(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Detach(chi.URLParam(r, "name"), chi.URLParam(r, "sink")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listSinks godoc
// @Summary      List sinks
// @Tags         sinks
// @Produce      json
// @Success      200  {object}  types.SinksResponse
// @Router       /sinks [get]
func (h *handlers) listSinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.SinksResponse{Sinks: h.svc.Sinks()})
}

// createSink godoc
// @Summary      Create a sink
// @Tags         sinks
// @Accept       json
// @Produce      json
// @Param        body  body      types.CreateSinkRequest  true  "sink"
// @Success      201   {object}  types.SinkInfo
// @Failure      400   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Router       /sinks [post]
func (h *handlers) createSink(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	spec := hub.SinkSpec{Name: req.Name, Kind: req.Kind, Capacity: req.Capacity, Path: req.Path}
	if err := h.svc.CreateSink(spec); err != nil {
		writeServiceError(w, err)
		return
	}
	for _, s := range h.svc.Sinks() {
		if s.Name == req.Name {
			writeJSON(w, http.StatusCreated, s)
			return
		}
	}
	writeJSONError(w, http.StatusConflict, "sink closed concurrently: "+req.Name)
}

// closeSink godoc
// @Summary      Close a sink
// @Description  Detaches the sink from every channel and releases it.
// @Tags         sinks
// @Param        name  path  string  true  "sink name"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /sinks/{name} [delete]
func (h *handlers) closeSink(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseSink(chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sinkEvents godoc
// @Summary      Events retained by a sink
// @Description  Only memory and journal sinks retain events.
// @Tags         sinks
// @Produce      json
// @Param        name  path      string  true  "sink name"
// @Success      200   {object}  types.SinkEventsResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Router       /sinks/{name}/events [get]
func (h *handlers) sinkEvents(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	evs, err := h.svc.SinkEvents(name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if evs == nil {
		evs = []types.Event{}
	}
	writeJSON(w, http.StatusOK, types.SinkEventsResponse{Sink: name, Events: evs})
}

// status godoc
// @Summary      Service status
// @Tags         status
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *handlers) writeChannel(w http.ResponseWriter, status int, name string) {
	for _, c := range h.svc.Channels() {
		if c.Name == name {
			writeJSON(w, status, c)
			return
		}
	}
	writeJSONError(w, http.StatusConflict, "channel closed concurrently: "+name)
}

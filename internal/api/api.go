// Package api exposes front-end (PTZ) control over HTTP. Paths and parameter
// names follow the /api/front-end endpoints common to GB/T 28181 platforms.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"gb-ptz-remote/internal/gb28181"
	"gb-ptz-remote/internal/ptz"
	"gb-ptz-remote/internal/registry"
)

// Response codes
const (
	CodeSuccess       = 0
	CodeCommandFailed = 100
	CodeBadParameter  = 400
	CodeNotFound      = 404
)

// Response is the JSON envelope of every endpoint
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// CommandResult is returned for every command sent
type CommandResult struct {
	DeviceID  string `json:"device_id"`
	ChannelID string `json:"channel_id"`
	PTZCmd    string `json:"ptz_cmd"`
}

// Handler serves the front-end control endpoints
type Handler struct {
	devices   registry.Store
	transport ptz.Transport
	log       zerolog.Logger
}

func NewHandler(devices registry.Store, transport ptz.Transport, log zerolog.Logger) *Handler {
	return &Handler{devices: devices, transport: transport, log: log}
}

// commandForm is the query or form body of a front-end command
type commandForm struct {
	Command string `form:"command" json:"command"`
	ptz.Params
}

// route binds a path to a command family. An empty action is read from the
// command parameter.
type route struct {
	method string
	path   string
	family ptz.Family
	action string
}

var routes = []route{
	{http.MethodPost, "/common", ptz.FamilyCommon, "raw"},
	{http.MethodPost, "/ptz", ptz.FamilyMove, ""},
	{http.MethodPost, "/fi/iris", ptz.FamilyIris, ""},
	{http.MethodPost, "/fi/focus", ptz.FamilyFocus, ""},

	{http.MethodGet, "/preset/add", ptz.FamilyPreset, "add"},
	{http.MethodGet, "/preset/call", ptz.FamilyPreset, "call"},
	{http.MethodGet, "/preset/delete", ptz.FamilyPreset, "delete"},

	{http.MethodGet, "/cruise/point/add", ptz.FamilyCruise, "point-add"},
	{http.MethodGet, "/cruise/point/delete", ptz.FamilyCruise, "point-delete"},
	{http.MethodGet, "/cruise/speed", ptz.FamilyCruise, "speed"},
	{http.MethodGet, "/cruise/time", ptz.FamilyCruise, "time"},
	{http.MethodGet, "/cruise/start", ptz.FamilyCruise, "start"},
	{http.MethodGet, "/cruise/stop", ptz.FamilyCruise, "stop"},

	{http.MethodGet, "/scan/start", ptz.FamilyScan, "start"},
	{http.MethodGet, "/scan/stop", ptz.FamilyScan, "stop"},
	{http.MethodGet, "/scan/set/left", ptz.FamilyScan, "left"},
	{http.MethodGet, "/scan/set/right", ptz.FamilyScan, "right"},
	{http.MethodGet, "/scan/set/speed", ptz.FamilyScan, "speed"},

	{http.MethodPost, "/wiper", ptz.FamilyWiper, ""},
	{http.MethodPost, "/auxiliary", ptz.FamilyAuxiliary, ""},
}

// Register mounts the endpoints on r
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/api/devices", h.listDevices)

	g := r.Group("/api/front-end")
	for _, rt := range routes {
		g.Handle(rt.method, rt.path+"/:deviceId/:channelId", h.command(rt))
	}
}

func (h *Handler) listDevices(c *gin.Context) {
	devices, err := h.devices.List()
	if err != nil {
		respond(c, http.StatusInternalServerError, CodeCommandFailed, err.Error(), nil)
		return
	}
	respond(c, http.StatusOK, CodeSuccess, "success", devices)
}

func (h *Handler) command(rt route) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form commandForm
		if err := c.ShouldBind(&form); err != nil {
			respond(c, http.StatusBadRequest, CodeBadParameter, "bad parameter: "+err.Error(), nil)
			return
		}

		action := rt.action
		if action == "" {
			action = form.Command
		}

		h.dispatch(c, ptz.Request{Family: rt.family, Action: action, Params: form.Params})
	}
}

// dispatch resolves the device, encodes the request and hands it to the
// transport
func (h *Handler) dispatch(c *gin.Context, req ptz.Request) {
	deviceID, channelID := c.Param("deviceId"), c.Param("channelId")

	log := h.log.With().Str("device", deviceID).Str("channel", channelID).
		Str("family", string(req.Family)).Str("action", req.Action).Logger()
	log.Debug().Msg("[api] front-end control")

	device, err := h.devices.Get(deviceID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			respond(c, http.StatusNotFound, CodeNotFound, "device not found: "+deviceID, nil)
			return
		}
		respond(c, http.StatusInternalServerError, CodeCommandFailed, err.Error(), nil)
		return
	}
	if !device.HasChannel(channelID) {
		respond(c, http.StatusNotFound, CodeNotFound, "channel not found: "+channelID, nil)
		return
	}

	cmd, err := ptz.EncodeFor(deviceID, channelID, req)
	if err != nil {
		respond(c, http.StatusBadRequest, CodeBadParameter, err.Error(), nil)
		return
	}

	if err = h.transport.Send(c.Request.Context(), cmd); err != nil {
		log.Error().Err(err).Msg("[api] command send failed")
		respond(c, http.StatusInternalServerError, CodeCommandFailed, "command send failed: "+err.Error(), nil)
		return
	}

	respond(c, http.StatusOK, CodeSuccess, "success", CommandResult{
		DeviceID:  deviceID,
		ChannelID: channelID,
		PTZCmd:    gb28181.FrameString(cmd, device.PTZAddress()),
	})
}

func respond(c *gin.Context, status, code int, msg string, data any) {
	c.JSON(status, Response{Code: code, Msg: msg, Data: data})
}

// CrossOrigin Access-Control-Allow-Origin any methods
func CrossOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

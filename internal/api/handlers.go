package api

import (
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"dogwalk/internal/app"
	"dogwalk/internal/game"
	"dogwalk/internal/render"
)

// maxRecordsPage caps one scoreboard page.
const maxRecordsPage = 100

// apiHandlers holds the endpoint implementations. Method filtering is
// done inside the handlers because the 405 messages differ between the
// join/action/tick family and the read-only endpoints.
type apiHandlers struct {
	app         GameApp
	records     RecordsProvider
	previews    *render.Cache
	tickEnabled bool
}

// requireGetHead answers wrong-verb requests on read-only endpoints.
// The 405 message differs between the catalog and the game family, so
// callers supply it.
func requireGetHead(w http.ResponseWriter, r *http.Request, message string) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeError(w, http.StatusMethodNotAllowed, codeInvalidMethod, message)
	return false
}

// requirePost answers wrong-verb requests on mutating endpoints.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", "POST")
	writeError(w, http.StatusMethodNotAllowed, codeInvalidMethod, "Only POST method is expected")
	return false
}

// requireGet answers wrong-verb requests on endpoints that do not take
// HEAD: the records page and the map preview.
func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", "GET")
	writeError(w, http.StatusMethodNotAllowed, codeInvalidMethod, "Only GET method is expected")
	return false
}

// handleBadRequest answers every /api path that matches nothing else.
func (h *apiHandlers) handleBadRequest(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusBadRequest, codeBadRequest, "Bad request")
}

// ----- maps ------------------------------------------------------------

type mapListItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *apiHandlers) handleMaps(w http.ResponseWriter, r *http.Request) {
	if !requireGetHead(w, r, "Only GET, HEAD method is expected") {
		return
	}
	maps := h.app.Maps()
	out := make([]mapListItem, 0, len(maps))
	for _, m := range maps {
		out = append(out, mapListItem{ID: m.ID, Name: m.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

type roadPayload struct {
	X0 float64  `json:"x0"`
	Y0 float64  `json:"y0"`
	X1 *float64 `json:"x1,omitempty"`
	Y1 *float64 `json:"y1,omitempty"`
}

type officePayload struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OffsetX int     `json:"offsetX"`
	OffsetY int     `json:"offsetY"`
}

type mapPayload struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Roads     []roadPayload         `json:"roads"`
	Buildings []game.Building       `json:"buildings"`
	Offices   []officePayload       `json:"offices"`
	LootTypes []jsoniter.RawMessage `json:"lootTypes"`
}

func mapPayloadFrom(m *game.Map) mapPayload {
	p := mapPayload{
		ID:        m.ID,
		Name:      m.Name,
		Roads:     make([]roadPayload, 0, len(m.Roads)),
		Buildings: m.Buildings,
		Offices:   make([]officePayload, 0, len(m.Offices)),
		LootTypes: make([]jsoniter.RawMessage, 0, len(m.LootTypes)),
	}
	if p.Buildings == nil {
		p.Buildings = []game.Building{}
	}
	for _, rd := range m.Roads {
		rp := roadPayload{X0: rd.Start.X, Y0: rd.Start.Y}
		if rd.IsHorizontal() {
			end := rd.End.X
			rp.X1 = &end
		} else {
			end := rd.End.Y
			rp.Y1 = &end
		}
		p.Roads = append(p.Roads, rp)
	}
	for _, o := range m.Offices {
		p.Offices = append(p.Offices, officePayload{
			ID: o.ID, X: o.Pos.X, Y: o.Pos.Y, OffsetX: o.OffsetX, OffsetY: o.OffsetY,
		})
	}
	for _, lt := range m.LootTypes {
		p.LootTypes = append(p.LootTypes, lt.Raw)
	}
	return p
}

func (h *apiHandlers) handleMapByID(w http.ResponseWriter, r *http.Request, id string) {
	if !requireGetHead(w, r, "Only GET, HEAD method is expected") {
		return
	}
	m, ok := h.app.Map(id)
	if !ok {
		writeError(w, http.StatusNotFound, codeMapNotFound, "Map not found")
		return
	}
	writeJSON(w, http.StatusOK, mapPayloadFrom(m))
}

func (h *apiHandlers) handleMapPreview(w http.ResponseWriter, r *http.Request, id string) {
	if !requireGet(w, r) {
		return
	}
	m, ok := h.app.Map(id)
	if !ok {
		writeError(w, http.StatusNotFound, codeMapNotFound, "Map not found")
		return
	}
	img, err := h.previews.PNG(m)
	if err != nil {
		logServerError(r, err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Write(img)
}

// ----- join ------------------------------------------------------------

type joinRequest struct {
	UserName string `json:"userName"`
	MapID    string `json:"mapId"`
}

type joinResponse struct {
	AuthToken string `json:"authToken"`
	PlayerID  int    `json:"playerId"`
}

func (h *apiHandlers) handleJoin(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "Join game request parse error")
		return
	}
	res, err := h.app.Join(req.MapID, req.UserName)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{AuthToken: string(res.Token), PlayerID: res.PlayerID})
}

// ----- players ---------------------------------------------------------

type playerName struct {
	Name string `json:"name"`
}

func (h *apiHandlers) handlePlayers(w http.ResponseWriter, r *http.Request) {
	if !requireGetHead(w, r, "Invalid method") {
		return
	}
	tok, aerr := bearerToken(r)
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	entries, err := h.app.Players(tok)
	if err != nil {
		writeGameError(w, err)
		return
	}
	out := make(map[string]playerName, len(entries))
	for _, e := range entries {
		out[strconv.Itoa(e.ID)] = playerName{Name: e.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

// ----- state -----------------------------------------------------------

type statePlayer struct {
	Pos   [2]float64     `json:"pos"`
	Speed [2]float64     `json:"speed"`
	Dir   string         `json:"dir"`
	Bag   []game.BagItem `json:"bag"`
	Score int            `json:"score"`
}

type stateLoot struct {
	Type int        `json:"type"`
	Pos  [2]float64 `json:"pos"`
}

type stateBody struct {
	Players     map[string]statePlayer `json:"players"`
	LostObjects map[string]stateLoot   `json:"lostObjects"`
}

func stateBodyFrom(view app.StateView) stateBody {
	body := stateBody{
		Players:     make(map[string]statePlayer, len(view.Dogs)),
		LostObjects: make(map[string]stateLoot, len(view.Loot)),
	}
	for _, d := range view.Dogs {
		bag := d.Bag
		if bag == nil {
			bag = []game.BagItem{}
		}
		body.Players[strconv.Itoa(d.ID)] = statePlayer{
			Pos:   d.Pos,
			Speed: d.Speed,
			Dir:   d.Dir,
			Bag:   bag,
			Score: d.Score,
		}
	}
	for _, l := range view.Loot {
		body.LostObjects[strconv.Itoa(l.ID)] = stateLoot{Type: l.Type, Pos: l.Pos}
	}
	return body
}

func (h *apiHandlers) handleState(w http.ResponseWriter, r *http.Request) {
	if !requireGetHead(w, r, "Invalid method") {
		return
	}
	tok, aerr := bearerToken(r)
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	view, err := h.app.State(tok)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateBodyFrom(view))
}

// ----- action ----------------------------------------------------------

type actionRequest struct {
	Move string `json:"move"`
}

func (h *apiHandlers) handleAction(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	tok, aerr := bearerToken(r)
	if aerr != nil {
		writeAPIError(w, aerr)
		return
	}
	ct := r.Header.Get("Content-Type")
	if mt := strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]); mt != "application/json" {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "Invalid content type")
		return
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "Failed to parse action")
		return
	}
	dir, ok := game.DirectionFromLetter(req.Move)
	if !ok {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "Failed to parse action")
		return
	}
	if err := h.app.Move(tok, dir); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// ----- tick ------------------------------------------------------------

type tickRequest struct {
	TimeDelta *int64 `json:"timeDelta"`
}

// handleTick drives the simulation by hand. The route is only reachable
// when the server runs without an internal ticker.
func (h *apiHandlers) handleTick(w http.ResponseWriter, r *http.Request) {
	if !h.tickEnabled {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid endpoint")
		return
	}
	if !requirePost(w, r) {
		return
	}
	var req tickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TimeDelta == nil || *req.TimeDelta < 0 {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "Failed to parse tick request JSON")
		return
	}
	h.app.AdvanceTime(float64(*req.TimeDelta) / 1000.0)
	writeJSON(w, http.StatusOK, struct{}{})
}

// ----- records ---------------------------------------------------------

func (h *apiHandlers) handleRecords(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	if h.records == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid endpoint")
		return
	}
	start, maxItems := 0, maxRecordsPage
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, codeInvalidArgument, "Failed to parse records query")
			return
		}
		start = n
	}
	if v := q.Get("maxItems"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, codeInvalidArgument, "Failed to parse records query")
			return
		}
		maxItems = n
	}
	if maxItems > maxRecordsPage {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "maxItems exceeds the limit of 100")
		return
	}
	recs, err := h.records.Page(r.Context(), start, maxItems)
	if err != nil {
		logServerError(r, err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

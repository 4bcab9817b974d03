package session

import "github.com/okri/mosaic/internal/domain"

// ViewState is the single value every event transition reads and
// mutates: registry, pagination, focus, plus the side bookkeeping the
// reconciler needs (remote membership and per-participant video track
// counts). It replaces the ad-hoc instance fields of the original
// browser client with one explicit object, so transitions are
// deterministic and testable without any UI.
type ViewState struct {
	Registry *Registry
	Pager    *Pager
	Focus    Focus

	connected bool

	// members tracks connected remote participants in join order,
	// whether or not they currently have a tile. Source of the roster
	// projection, so order matters and a map will not do.
	members []domain.Participant

	// localName holds the local display name once local media is
	// published; empty means no local roster entry yet.
	localName string

	// videoTracks counts live subscribed video tracks per remote.
	// A tile exists while its count is positive, so losing one of two
	// video tracks does not evict the participant.
	videoTracks map[domain.ParticipantID]int
}

func NewViewState(pageSize int) *ViewState {
	return &ViewState{
		Registry:    NewRegistry(),
		Pager:       NewPager(pageSize),
		videoTracks: make(map[domain.ParticipantID]int),
	}
}

func (s *ViewState) Connected() bool { return s.connected }

// memberName resolves a remote display name from the membership list.
func (s *ViewState) memberName(id domain.ParticipantID) string {
	for _, m := range s.members {
		if m.ID == id {
			return m.Name
		}
	}
	return ""
}

func (s *ViewState) addMember(id domain.ParticipantID, name string) {
	for i := range s.members {
		if s.members[i].ID == id {
			s.members[i].Name = name
			return
		}
	}
	s.members = append(s.members, domain.Participant{ID: id, Name: name})
}

func (s *ViewState) removeMember(id domain.ParticipantID) {
	for i := range s.members {
		if s.members[i].ID == id {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return
		}
	}
}

// reset tears down everything after a self-disconnect. The transport
// guarantees no further events arrive until a new connect.
func (s *ViewState) reset() {
	s.connected = false
	s.Registry.Clear()
	s.Pager.Reset()
	s.Focus.Clear()
	s.members = nil
	s.localName = ""
	s.videoTracks = make(map[domain.ParticipantID]int)
}

// Snapshot is the immutable projection handed to renderers. A
// renderer diffs consecutive snapshots; the core never touches a UI.
type Snapshot struct {
	Connected    bool
	Tiles        []domain.Tile        // video tiles, local first
	Visible      []domain.Tile        // current page window
	Roster       []domain.Participant // everyone connected, local first then join order
	Page         int
	MaxPage      int
	ShowControls bool
	Focused      domain.ParticipantID // empty when nothing is focused
}

func (s *ViewState) Snapshot() Snapshot {
	tiles := s.Registry.Tiles()
	snap := Snapshot{
		Connected:    s.connected,
		Tiles:        tiles,
		Visible:      s.Pager.Window(tiles),
		Roster:       s.roster(),
		Page:         s.Pager.Page(),
		MaxPage:      s.Pager.MaxPage(),
		ShowControls: s.Pager.ShowControls(len(tiles)),
	}
	if id, ok := s.Focus.ID(); ok {
		snap.Focused = id
	}
	return snap
}

// roster lists every connected participant, tile or not. An
// audio-only or viewing participant shows up here even though the
// registry holds no tile for them.
func (s *ViewState) roster() []domain.Participant {
	if s.localName == "" && len(s.members) == 0 {
		return nil
	}
	out := make([]domain.Participant, 0, len(s.members)+1)
	if s.localName != "" {
		out = append(out, domain.Participant{ID: domain.Local, Name: s.localName})
	}
	return append(out, s.members...)
}

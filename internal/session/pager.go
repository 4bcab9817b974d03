package session

import "github.com/okri/mosaic/internal/domain"

// DefaultPageSize matches the four-up grid of the reference layout.
const DefaultPageSize = 4

// Pager derives the visible window of the tile registry. Visibility
// is a pure projection: tiles outside the window stay in the
// registry. The current page is always clamped into [0, maxPage].
type Pager struct {
	pageSize int
	page     int
	maxPage  int
}

func NewPager(pageSize int) *Pager {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Pager{pageSize: pageSize}
}

func (p *Pager) PageSize() int { return p.pageSize }
func (p *Pager) Page() int     { return p.page }
func (p *Pager) MaxPage() int  { return p.maxPage }

// Recompute refreshes maxPage for a registry of n tiles and clamps
// the current page downward if the registry shrank under it.
func (p *Pager) Recompute(n int) {
	p.maxPage = 0
	if n > 0 {
		p.maxPage = (n + p.pageSize - 1) / p.pageSize - 1
	}
	if p.page > p.maxPage {
		p.page = p.maxPage
	}
}

// ChangePage moves the current page by delta, clamped to the valid
// range. Delta is usually ±1 but any integer is accepted.
func (p *Pager) ChangePage(delta int) {
	p.page += delta
	if p.page < 0 {
		p.page = 0
	}
	if p.page > p.maxPage {
		p.page = p.maxPage
	}
}

// Window slices the current page out of tiles. The caller passes the
// registry's order; the slice bounds never exceed it.
func (p *Pager) Window(tiles []domain.Tile) []domain.Tile {
	start := p.page * p.pageSize
	if start >= len(tiles) {
		return nil
	}
	end := start + p.pageSize
	if end > len(tiles) {
		end = len(tiles)
	}
	return tiles[start:end]
}

// ShowControls reports whether pagination controls should be visible
// for a registry of n tiles.
func (p *Pager) ShowControls(n int) bool {
	return n > p.pageSize
}

func (p *Pager) Reset() {
	p.page = 0
	p.maxPage = 0
}

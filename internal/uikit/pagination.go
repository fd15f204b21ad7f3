// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// pagerWidth is how many page numbers are shown around the current page.
const pagerWidth = 5

// Pager is the numbered page bar of an admin table.
type Pager struct {
	Page       int
	TotalPages int
	PerPage    int
	TotalItems int64
	Pages      []PageLink

	path  string
	query url.Values
}

// PageLink is one entry of the page bar. Ellipsis entries have no URL.
type PageLink struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// NewPager builds the page bar for path. Query parameters other than
// "page" (filters) are carried into every link. page is clamped.
func NewPager(page, totalItems, perPage int, path string, query url.Values) Pager {
	page, totalPages := NormalizePagination(page, totalItems, perPage)

	kept := url.Values{}
	for k, v := range query {
		if k != "page" && len(v) > 0 && v[0] != "" {
			kept[k] = v
		}
	}

	p := Pager{
		Page:       page,
		TotalPages: totalPages,
		PerPage:    perPage,
		TotalItems: int64(totalItems),
		path:       path,
		query:      kept,
	}
	for _, n := range pageWindow(page, totalPages, pagerWidth) {
		if n == 0 {
			p.Pages = append(p.Pages, PageLink{IsEllipsis: true})
			continue
		}
		p.Pages = append(p.Pages, PageLink{Number: n, URL: p.PageURL(n), IsCurrent: n == page})
	}
	return p
}

// PageURL returns the link to page n.
func (p Pager) PageURL(n int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	return p.path + "?" + q.Encode()
}

func (p Pager) HasPrev() bool { return p.Page > 1 }
func (p Pager) HasNext() bool { return p.Page < p.TotalPages }

func (p Pager) PrevURL() string { return p.PageURL(p.Page - 1) }
func (p Pager) NextURL() string { return p.PageURL(p.Page + 1) }

// ShouldShow reports whether there is more than one page.
func (p Pager) ShouldShow() bool {
	return p.TotalPages > 1
}

// PageRange describes the rows on the current page, e.g. "26-50".
func (p Pager) PageRange() string {
	start := (p.Page-1)*p.PerPage + 1
	end := min(p.Page*p.PerPage, int(p.TotalItems))
	return fmt.Sprintf("%d-%d", start, end)
}

// pageWindow returns width page numbers centred on current, always
// including the first and last page. 0 marks a gap.
func pageWindow(current, total, width int) []int {
	half := width / 2
	start := max(current-half, 1)
	end := min(start+width-1, total)
	start = max(end-width+1, 1)

	var out []int
	if start > 1 {
		out = append(out, 1)
		if start > 2 {
			out = append(out, 0)
		}
	}
	for n := start; n <= end; n++ {
		out = append(out, n)
	}
	if end < total {
		if end < total-1 {
			out = append(out, 0)
		}
		out = append(out, total)
	}
	return out
}

// NormalizePagination returns page clamped to [1, totalPages] and the
// number of pages. There is always at least one page.
func NormalizePagination(page, totalItems, perPage int) (int, int) {
	totalPages := 1
	if perPage > 0 && totalItems > 0 {
		totalPages = (totalItems + perPage - 1) / perPage
	}
	return min(max(page, 1), totalPages), totalPages
}

// ParsePage reads the "page" query parameter. Missing or invalid values
// yield 1.
func ParsePage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

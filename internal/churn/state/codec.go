package state

import (
	"net/url"
	"strconv"
	"strings"

	"sdkchurn/internal/gateway/entity"
)

const (
	ParamID       = "id"
	ParamNormal   = "normal"
	ParamSelected = "selected"
)

// Decode never fails. Values that do not parse are dropped.
func Decode(q url.Values) State {
	s := State{
		SelectedSDKs: ParseIDs(q[ParamID]),
	}
	if q.Has(ParamNormal) {
		s.DisplayMode = Normalized
	}
	if p, ok := ParsePair(q.Get(ParamSelected)); ok {
		s.DrillDown = &p
	}
	return s
}

// DecodeQuery parses a raw query string. An unparsable query decodes to the
// empty state.
func DecodeQuery(rawQuery string) State {
	q, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return Decode(url.Values{})
	}
	return Decode(q)
}

// ParseIDs parses and deduplicates SDK ids, keeping first-seen order.
func ParseIDs(raw []string) []entity.SdkID {
	out := make([]entity.SdkID, 0, len(raw))
	seen := make(map[entity.SdkID]struct{}, len(raw))
	for _, v := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			continue
		}
		id := entity.SdkID(n)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ParsePair parses the literal "<from>/<to>" form.
func ParsePair(raw string) (entity.Pair, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entity.Pair{}, false
	}
	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return entity.Pair{}, false
	}
	from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return entity.Pair{}, false
	}
	to, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return entity.Pair{}, false
	}
	return entity.Pair{From: entity.SdkID(from), To: entity.SdkID(to)}, true
}

// Encode renders ids first, then the normal flag, then the drill-down pair.
// The pair is written unescaped so addresses stay readable.
func Encode(s State) string {
	parts := make([]string, 0, len(s.SelectedSDKs)+2)
	for _, id := range s.SelectedSDKs {
		parts = append(parts, ParamID+"="+strconv.Itoa(int(id)))
	}
	if s.DisplayMode == Normalized {
		parts = append(parts, ParamNormal)
	}
	if s.DrillDown != nil {
		parts = append(parts, ParamSelected+"="+s.DrillDown.String())
	}
	return strings.Join(parts, "&")
}

// Href is the navigation target for s. Following it is the only way state
// changes.
func Href(path string, s State) string {
	if path == "" {
		path = "/"
	}
	encoded := Encode(s)
	if encoded == "" {
		return path
	}
	return path + "?" + encoded
}

// Canonicalize substitutes the bootstrap state for an empty selection. The
// second result reports whether the caller must navigate to the new address.
func Canonicalize(s State) (State, bool) {
	if !s.IsEmpty() {
		return s, false
	}
	return Bootstrap(s.DisplayMode), true
}

package loader

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// minFaultPathSegments is the shortest redirect path we accept, counting the
// empty segment before the leading slash: /projects/{p}/faults/{f}/{n}.
const minFaultPathSegments = 6

// faultsLabel marks the fault id in a redirect path.
const faultsLabel = "faults"

// noticesLabel optionally precedes the notice id.
const noticesLabel = "notices"

// Positions the faults label may take: /projects/{p}/faults/... and
// /v1/{org}/{p}/faults/....
const (
	canonicalLabelIndex = 3
	versionedLabelIndex = 4
)

// faultPath holds the identifiers carried by a redirect target.
type faultPath struct {
	Project string
	Fault   string
	Notice  string
}

// BuildFaultDetailsURI derives the Read API detail URI from the location the
// lookup endpoint redirected to. A nil target yields nil.
//
// The result is {scheme}://{host}[:{port}]/v1/projects/{p}/faults/{f}/notices/{n}/.
// The port is kept only when the target names a positive one explicitly.
func BuildFaultDetailsURI(target *url.URL) (*url.URL, error) {
	if target == nil {
		return nil, nil
	}

	ids, err := parseFaultPath(target.Path)
	if err != nil {
		return nil, err
	}

	host := target.Hostname()
	if port, err := strconv.Atoi(target.Port()); err == nil && port > 0 {
		host = target.Host
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	return &url.URL{
		Scheme: target.Scheme,
		Host:   host,
		Path:   fmt.Sprintf("/v1/projects/%s/faults/%s/notices/%s/", ids.Project, ids.Fault, ids.Notice),
	}, nil
}

// parseFaultPath pulls the identifiers out of a redirect path. When the
// segment at index 3 or 4 is the faults label ("/.../{p}/faults/{f}/[notices/]{n}")
// the ids are read relative to it; anything else uses the fixed layout with
// the project at segment 2, the fault at 4 and the notice at 5.
func parseFaultPath(path string) (faultPath, error) {
	segments := strings.Split(path, "/")
	if len(segments) < minFaultPathSegments {
		return faultPath{}, &PathError{
			Path:   path,
			Reason: fmt.Sprintf("want at least %d segments, got %d", minFaultPathSegments, len(segments)),
		}
	}

	at := func(i int) string {
		if i < 0 || i >= len(segments) {
			return ""
		}
		return segments[i]
	}

	var ids faultPath
	if label := faultsLabelIndex(segments); label > 0 {
		notice := label + 2
		if at(notice) == noticesLabel {
			notice++
		}
		ids = faultPath{Project: at(label - 1), Fault: at(label + 1), Notice: at(notice)}
	} else {
		ids = faultPath{Project: at(2), Fault: at(4), Notice: at(5)}
	}

	for _, f := range []struct{ name, v string }{
		{"project", ids.Project},
		{"fault", ids.Fault},
		{"notice", ids.Notice},
	} {
		if f.v == "" {
			return faultPath{}, &PathError{Path: path, Reason: "missing " + f.name + " id"}
		}
	}
	return ids, nil
}

// faultsLabelIndex returns where the faults label sits, or -1 when it is not
// at one of the two recognised positions.
func faultsLabelIndex(segments []string) int {
	for _, i := range []int{canonicalLabelIndex, versionedLabelIndex} {
		if i < len(segments) && segments[i] == faultsLabel {
			return i
		}
	}
	return -1
}

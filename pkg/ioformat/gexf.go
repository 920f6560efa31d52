package ioformat

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/homeplan/scheduler/pkg/domain"
)

// gexfAttrMeta mirrors the Gephi attribute-column metadata the original
// writer declares once per graph: a stable id, a display name and a type.
type gexfAttrMeta struct {
	id, name, typ string
}

var (
	attrLatitude  = gexfAttrMeta{"0", "position_y", "double"}
	attrLongitude = gexfAttrMeta{"1", "position_x", "double"}
	attrStartTime = gexfAttrMeta{"2", "start_time", "string"}
	attrDuration  = gexfAttrMeta{"3", "duration", "long"}
	attrCarer     = gexfAttrMeta{"4", "assigned_carer", "string"}
	attrType      = gexfAttrMeta{"5", "type", "string"}
	attrDropped   = gexfAttrMeta{"6", "dropped", "boolean"}

	attrTravelTime = gexfAttrMeta{"0", "travel_time", "long"}
)

// gexfDoc is the root <gexf> element of a GEXF 1.2 document.
type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	Xmlns   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfGraph struct {
	DefaultEdgeType string            `xml:"defaultedgetype,attr"`
	Mode            string            `xml:"mode,attr"`
	Attributes      []gexfAttributes  `xml:"attributes"`
	Nodes           gexfNodesElem     `xml:"nodes"`
	Edges           gexfEdgesElem     `xml:"edges"`
}

type gexfAttributes struct {
	Class string      `xml:"class,attr"`
	Attrs []gexfAttrXML `xml:"attribute"`
}

type gexfAttrXML struct {
	ID      string `xml:"id,attr"`
	Title   string `xml:"title,attr"`
	Type    string `xml:"type,attr"`
}

type gexfNodesElem struct {
	Nodes []gexfNode `xml:"node"`
}

type gexfNode struct {
	ID    string           `xml:"id,attr"`
	Label string           `xml:"label,attr"`
	Attvalues gexfAttvalues `xml:"attvalues"`
}

type gexfEdgesElem struct {
	Edges []gexfEdge `xml:"edge"`
}

type gexfEdge struct {
	ID        string        `xml:"id,attr"`
	Source    string        `xml:"source,attr"`
	Target    string        `xml:"target,attr"`
	Weight    string        `xml:"weight,attr"`
	Attvalues gexfAttvalues `xml:"attvalues"`
}

type gexfAttvalues struct {
	Values []gexfAttvalue `xml:"attvalue"`
}

type gexfAttvalue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

func nodeAttr(meta gexfAttrMeta, value string) gexfAttvalue {
	return gexfAttvalue{For: meta.id, Value: value}
}

// WriteGEXF renders sol as a directed graph for Gephi: one node per depot
// and visit, one edge per traveled leg of each carer's route, with the
// travel time (seconds) the only edge attribute, matching the node/edge
// attribute layout the original graph export used.
func WriteGEXF(w io.Writer, depot domain.Location, sol domain.Solution, travelSeconds func(a, b domain.Location) (int64, error)) error {
	doc := gexfDoc{
		Xmlns:   "http://www.gexf.net/1.2draft",
		Version: "1.2",
		Graph: gexfGraph{
			DefaultEdgeType: "directed",
			Mode:            "static",
			Attributes: []gexfAttributes{
				{
					Class: "node",
					Attrs: []gexfAttrXML{
						{ID: attrLatitude.id, Title: attrLatitude.name, Type: attrLatitude.typ},
						{ID: attrLongitude.id, Title: attrLongitude.name, Type: attrLongitude.typ},
						{ID: attrStartTime.id, Title: attrStartTime.name, Type: attrStartTime.typ},
						{ID: attrDuration.id, Title: attrDuration.name, Type: attrDuration.typ},
						{ID: attrCarer.id, Title: attrCarer.name, Type: attrCarer.typ},
						{ID: attrType.id, Title: attrType.name, Type: attrType.typ},
						{ID: attrDropped.id, Title: attrDropped.name, Type: attrDropped.typ},
					},
				},
				{
					Class: "edge",
					Attrs: []gexfAttrXML{
						{ID: attrTravelTime.id, Title: attrTravelTime.name, Type: attrTravelTime.typ},
					},
				},
			},
		},
	}

	doc.Graph.Nodes.Nodes = append(doc.Graph.Nodes.Nodes, gexfNode{
		ID:    "0",
		Label: "depot",
		Attvalues: gexfAttvalues{Values: []gexfAttvalue{
			nodeAttr(attrLatitude, formatFloat(depot.Latitude())),
			nodeAttr(attrLongitude, formatFloat(depot.Longitude())),
			nodeAttr(attrType, "depot"),
		}},
	})

	for _, v := range sol.Visits {
		id := strconv.FormatInt(v.Visit.ID, 10)
		values := []gexfAttvalue{
			nodeAttr(attrLatitude, formatFloat(v.Visit.Location.Latitude())),
			nodeAttr(attrLongitude, formatFloat(v.Visit.Location.Longitude())),
			nodeAttr(attrStartTime, v.PlannedStart.Format(timestampLayout)),
			nodeAttr(attrDuration, strconv.FormatInt(int64(v.PlannedDuration.Seconds()), 10)),
			nodeAttr(attrType, "visit"),
			nodeAttr(attrDropped, strconv.FormatBool(!v.Assigned())),
		}
		if v.Assigned() {
			values = append(values, nodeAttr(attrCarer, v.CarerID))
		}
		doc.Graph.Nodes.Nodes = append(doc.Graph.Nodes.Nodes, gexfNode{
			ID:        id,
			Label:     id,
			Attvalues: gexfAttvalues{Values: values},
		})
	}

	edgeID := 0
	for _, route := range sol.ByCarer() {
		prev := depot
		prevID := "0"
		for _, sv := range route.Visits {
			nodeID := strconv.FormatInt(sv.Visit.ID, 10)
			seconds, err := travelSeconds(prev, sv.Visit.Location)
			if err != nil {
				return fmt.Errorf("ioformat: gexf travel time %s -> %s: %w", prevID, nodeID, err)
			}
			doc.Graph.Edges.Edges = append(doc.Graph.Edges.Edges, gexfEdge{
				ID:     strconv.Itoa(edgeID),
				Source: prevID,
				Target: nodeID,
				Weight: "1.0",
				Attvalues: gexfAttvalues{Values: []gexfAttvalue{
					nodeAttr(attrTravelTime, strconv.FormatInt(seconds, 10)),
				}},
			})
			edgeID++
			prev = sv.Visit.Location
			prevID = nodeID
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("ioformat: write gexf header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("ioformat: encode gexf document: %w", err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

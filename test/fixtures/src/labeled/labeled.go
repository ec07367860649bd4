package labeled

import (
	"strconv"

	"git.home.luguber.info/inful/metricweave/pkg/instrument"
)

// Response opts into label extraction by implementing instrument.Labeler.
type Response struct {
	Status int
}

func (r Response) MetricLabels() instrument.LabelSet {
	return instrument.LabelSet{{Key: "status", Value: strconv.Itoa(r.Status)}}
}

//metricweave:instrument
func Handle() Response {
	return Response{Status: 200}
}

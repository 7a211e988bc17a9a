//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vocab

import (
	"fmt"

	"github.com/MHA535/turftopic/internal/tm"
)

// Texts - bodies ready for the model: each keeps its body and gets its candidate terms
func Texts(bodies []string, stops []string, maxPerDoc int) ([]tm.Text, error) {
	if len(bodies) == 0 {
		return nil, fmt.Errorf("%w: no texts", tm.ErrEmptyBatch)
	}
	terms, err := Candidates(bodies, stops, maxPerDoc)
	if err != nil {
		return nil, err
	}
	out := make([]tm.Text, len(bodies))
	for i, b := range bodies {
		out[i] = tm.Text{Body: b, Terms: terms[i]}
	}
	return out, nil
}

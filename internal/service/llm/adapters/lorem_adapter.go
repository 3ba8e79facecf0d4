package adapters

import (
	"github.com/haowjy/meridian-llm-go/providers/lorem"
)

const loremName = "lorem"

// NewLoremAdapter creates the offline mock adapter. It needs no API key and
// replies with lorem ipsum, which keeps local development off the network.
func NewLoremAdapter(opts Options) (*LibraryAdapter, error) {
	if err := opts.requireModel(loremName); err != nil {
		return nil, err
	}
	return NewLibraryAdapter(loremName, lorem.NewProvider(), opts), nil
}

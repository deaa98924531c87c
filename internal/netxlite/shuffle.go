package netxlite

import (
	"math/rand/v2"

	"github.com/onedata/etls/internal/model"
)

// ShuffleEndpoints converts the addresses returned by a [Resolver] to
// endpoints using the given port and returns them in random order. We
// shuffle so that we do not always hammer the first address returned
// by the DNS and we get some load distribution across replicas.
//
// The permutation uses the top-level functions of math/rand/v2, which
// are safe for concurrent use and randomly seeded by the runtime.
//
// The connect pipeline calls this function before checking whether the
// lookup failed. This is harmless because a failed lookup returns no
// addresses and shuffling an empty list is a no-op.
func ShuffleEndpoints(addrs []string, port uint16) []model.Endpoint {
	endpoints := make([]model.Endpoint, 0, len(addrs))
	for _, addr := range addrs {
		endpoints = append(endpoints, model.Endpoint{Address: addr, Port: port})
	}
	rand.Shuffle(len(endpoints), func(i, j int) {
		endpoints[i], endpoints[j] = endpoints[j], endpoints[i]
	})
	return endpoints
}

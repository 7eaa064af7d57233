package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// Init configures the node id used for every generated id. It must run before the
// first GenerateID call to take effect; later calls are ignored.
func Init(nodeID int64) error {
	var err error
	nodeOnce.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

func GenerateID() int64 {
	nodeOnce.Do(func() {
		// node 0 is always valid
		node, _ = snowflake.NewNode(0)
	})
	return node.Generate().Int64()
}

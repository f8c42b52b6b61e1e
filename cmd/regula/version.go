package main

import (
	"fmt"

	"github.com/ternarybob/regula/internal/common"
)

func printVersion() {
	fmt.Printf("Regula version %s\n", common.GetVersion())
}

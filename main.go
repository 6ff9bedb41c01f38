// Public domain.

package main

import "github.com/soniakeys/surveyledger/internal/prog"

func main() {
	prog.Main()
}

package crates_test

import (
	"fmt"

	"github.com/matzehuels/crategen/pkg/crates"
)

func ExampleEpochFromVersionReq() {
	for _, req := range []string{"^1.2", "0.3", "=0.0.5"} {
		epoch, _ := crates.EpochFromVersionReq(req)
		fmt.Println(req, "->", epoch)
	}
	// Output:
	// ^1.2 -> v1
	// 0.3 -> v0_3
	// =0.0.5 -> v0_0_5
}

func ExampleVendoredCrate() {
	c := crates.VendoredCrate{Name: "serde_json", Epoch: crates.Epoch{Major: 1}}
	fmt.Println(c.PatchName())
	fmt.Println(c.CratePath())
	// Output:
	// serde_json_v1
	// serde_json/v1/crate
}

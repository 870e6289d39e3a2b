package tscnode

import (
	_ "embed"
)

//go:embed driver.js
var driverJs string

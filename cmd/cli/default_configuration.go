package cli

import _ "embed"

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

const embeddedConfigurationTypeConstant = "yaml"

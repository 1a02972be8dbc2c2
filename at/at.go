package at

const (
	// Terminal control
	CR   = "\r"
	CRLF = "\r\n"

	// Prefix is prepended to every attention line on the wire.
	Prefix = "AT"

	// Commands used by the bring-up and network verification sequence.
	CmdEchoOff      = "E0"
	CmdOperatorScan = "+COPS=?"
	CmdAutoRegister = "+COPS=0"
	CmdFullReset    = "+CFUN=15"
	CmdRadioOff     = "+CFUN=0"
	CmdTextMode     = "+CMGF=1"
	CmdAutoTimezone = "+CTZU=1"
	CmdMNOProfile   = "+UMNOPROF"
	CmdMNOQuery     = "+UMNOPROF?"
	CmdPDPContext   = "+CGDCONT"
	CmdRegistration = "+CREG?"

	// Aux pin role assignments on the shield.
	CmdGPIONetworkLED = "+UGPIOC=16,2"
	CmdGPIOGNSSSupply = "+UGPIOC=23,3"
	CmdGPIOPowerInd   = "+UGPIOC=24,10"

	// NameMax caps how many command-name bytes are compared when a reply
	// is verified against the command that produced it.
	NameMax = 10
)

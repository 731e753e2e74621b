package routes

import "github.com/tedsuo/rata"

const (
	StartFirstMarket = "START_FIRST_MARKET"
	StartSvincolati  = "START_SVINCOLATI"
	StartRubata      = "START_RUBATA"
	GetSession       = "GET_SESSION"

	Nominate         = "NOMINATE"
	MarkReady        = "MARK_READY"
	CancelNomination = "CANCEL_NOMINATION"
	Bid              = "BID"
	Acknowledge      = "ACKNOWLEDGE"
	Pass             = "PASS"
	DeclareFinished  = "DECLARE_FINISHED"
	UndoFinished     = "UNDO_FINISHED"

	MakeOffer = "MAKE_OFFER"
	GoBack    = "GO_BACK"
	Pause     = "PAUSE"
	Resume    = "RESUME"

	GetBilancio     = "GET_BILANCIO"
	CreateContract  = "CREATE_CONTRACT"
	RenewContract   = "RENEW_CONTRACT"
	ReleaseContract = "RELEASE_CONTRACT"
	RecordDeparture = "RECORD_DEPARTURE"
	GetIndemnities  = "GET_INDEMNITIES"
)

var Routes = rata.Routes{
	{Path: "/first-market/sessions", Method: "POST", Name: StartFirstMarket},
	{Path: "/svincolati/sessions", Method: "POST", Name: StartSvincolati},
	{Path: "/rubata/sessions", Method: "POST", Name: StartRubata},
	{Path: "/sessions/:session_id", Method: "GET", Name: GetSession},

	{Path: "/sessions/:session_id/nominations", Method: "POST", Name: Nominate},
	{Path: "/sessions/:session_id/nominations", Method: "DELETE", Name: CancelNomination},
	{Path: "/sessions/:session_id/ready", Method: "POST", Name: MarkReady},
	{Path: "/sessions/:session_id/bids", Method: "POST", Name: Bid},
	{Path: "/sessions/:session_id/acks", Method: "POST", Name: Acknowledge},
	{Path: "/sessions/:session_id/pass", Method: "POST", Name: Pass},
	{Path: "/sessions/:session_id/finished", Method: "POST", Name: DeclareFinished},
	{Path: "/sessions/:session_id/finished", Method: "DELETE", Name: UndoFinished},

	{Path: "/sessions/:session_id/offers", Method: "POST", Name: MakeOffer},
	{Path: "/sessions/:session_id/go-back", Method: "POST", Name: GoBack},
	{Path: "/sessions/:session_id/pause", Method: "POST", Name: Pause},
	{Path: "/sessions/:session_id/resume", Method: "POST", Name: Resume},

	{Path: "/members/:member_id/bilancio", Method: "GET", Name: GetBilancio},
	{Path: "/contracts", Method: "POST", Name: CreateContract},
	{Path: "/contracts/:roster_entry_id", Method: "PUT", Name: RenewContract},
	{Path: "/contracts/:roster_entry_id", Method: "DELETE", Name: ReleaseContract},
	{Path: "/contracts/:roster_entry_id/departure", Method: "POST", Name: RecordDeparture},
	{Path: "/members/:member_id/indemnities", Method: "GET", Name: GetIndemnities},
}

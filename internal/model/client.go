package model

// Date and clock layouts used for optional client fields
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// Client is debt review lead model entity
type Client struct {
	LeadID        int64   `json:"leadId" bson:"lead_id" msgpack:"leadId"`
	Title         string  `json:"title" bson:"title" msgpack:"title"`
	Name          string  `json:"name" bson:"name" msgpack:"name"`
	Surname       string  `json:"surname" bson:"surname" msgpack:"surname"`
	PhoneNumber   string  `json:"phone_number" bson:"phone_number" msgpack:"phoneNumber"`
	IDNumber      string  `json:"id_number" bson:"id_number" msgpack:"idNumber"`
	Email         string  `json:"email" bson:"email" msgpack:"email"`
	Notes         *string `json:"notes" bson:"notes,omitempty" msgpack:"notes"`
	OptInDate     *string `json:"optindate" bson:"optindate,omitempty" msgpack:"optInDate"`
	PreferredTime *string `json:"preferred_time" bson:"preferred_time,omitempty" msgpack:"preferredTime"`
	OfferID       *string `json:"offerID" bson:"offer_id,omitempty" msgpack:"offerId"`
}

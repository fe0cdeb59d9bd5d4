package checkout

import "LutStore/pkg/kit"

var validate = kit.NewValidator()

var messages = map[string]string{
	"unique": "must not contain the same productId twice",
}

func validateRequest(req any) error {
	return kit.CheckStruct(validate, req, messages)
}

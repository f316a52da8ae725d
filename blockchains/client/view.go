package client

import (
	"context"
	"encoding/json"

	"libra-txs/blockchains/payload"
	"libra-txs/blockchains/types"

	"github.com/pkg/errors"
)

type viewRequest struct {
	Function      string        `json:"function"`
	TypeArguments []string      `json:"type_arguments"`
	Arguments     []interface{} `json:"arguments"`
}

// View calls the read only function `functionID` and returns the values it
// returns, undecoded. The arguments use the same literal syntax as the
// transactions, and are all parsed before the node is contacted.
func (c *Client) View(ctx context.Context, functionID, typeArgs, args string) ([]json.RawMessage, error) {
	var request viewRequest
	var ret []json.RawMessage
	var tags []types.TypeTag
	var tag types.TypeTag
	var module types.ModuleID
	var function string
	var body []byte
	var err error

	module.Address, module.Name, function, err = payload.ParseFunctionID(functionID)
	if err != nil {
		return nil, err
	}

	tags, err = payload.ParseTypeArguments(typeArgs)
	if err != nil {
		return nil, err
	}

	request.Arguments, err = payload.ParseJSONArguments(args)
	if err != nil {
		return nil, err
	}

	request.Function = module.String() + "::" + function
	request.TypeArguments = make([]string, 0, len(tags))
	for _, tag = range tags {
		request.TypeArguments = append(request.TypeArguments, tag.String())
	}

	body, err = json.Marshal(&request)
	if err != nil {
		return nil, errors.Wrap(err, "encode view request")
	}

	_, err = c.post(ctx, "/view", contentTypeJSON, body, &ret)
	if err != nil {
		return nil, errors.Wrapf(err, "view %s", request.Function)
	}

	return ret, nil
}

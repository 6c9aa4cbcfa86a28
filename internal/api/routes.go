package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"delegatesigner/internal/common"
	"delegatesigner/internal/delegate"
	"delegatesigner/internal/eip712"
	"delegatesigner/internal/hash"
	"delegatesigner/internal/manager"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

func (s *APIServer) RegisterRoutes() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), correlationIDMiddleware(), s.requestLoggingMiddleware())

	router.GET("/", s.DefaultHandler)

	v1 := router.Group("/v1/delegate_signer")
	v1.GET("/typed_data", s.GetTypedData)
	v1.POST("/digest", s.ComputeDigest)
	v1.POST("/verify", s.SubmitVerification)
	v1.GET("/verification/:id", s.GetVerification)

	// Wrap the router with CORS middleware
	return s.corsMiddleware(router)
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

func (s *APIServer) DefaultHandler(c *gin.Context) {
	encodedType, err := eip712.EncodeType(delegate.Types(), delegate.PrimaryType)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service":           "delegate-signer",
		"primaryType":       delegate.PrimaryType,
		"encodedType":       encodedType,
		"verifyingContract": delegate.VerifyingContract,
	})
}

// GetTypedData returns the eth_signTypedData_v4 document for the query
// parameters together with its digest.
func (s *APIServer) GetTypedData(c *gin.Context) {
	var query common.TypedDataParams
	if err := decoder.Decode(&query, c.Request.URL.Query()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid query parameters: %v", err)})
		return
	}

	params, err := s.paramsFromQuery(query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	digest, err := params.Digest()
	if err != nil {
		s.fail(c, err)
		return
	}

	typedData, err := hash.BuildTypedData(params.TypedData())
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"typedData": typedData,
		"message":   params.WireMessage(),
		"digest":    digest,
	})
}

func (s *APIServer) ComputeDigest(c *gin.Context) {
	body := c.Request.Body
	defer body.Close()

	var message common.DelegateSignerMessage
	if err := json.NewDecoder(body).Decode(&message); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message data"})
		s.logger.Debug("failed to decode message", zap.Error(err))
		return
	}

	params := delegate.ParamsFromMessage(message)
	if _, err := params.Digest(); err != nil {
		s.fail(c, err)
		return
	}

	td := params.TypedData()
	digest, err := hash.CrossCheck(td)
	if err != nil {
		s.fail(c, err)
		return
	}

	domainSeparator, err := td.DomainSeparator()
	if err != nil {
		s.fail(c, err)
		return
	}

	structHash, err := eip712.HashStruct(td.Types, td.PrimaryType, td.Message)
	if err != nil {
		s.fail(c, err)
		return
	}

	encodedType, err := eip712.EncodeType(td.Types, td.PrimaryType)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, common.DigestResponse{
		Digest:          digest,
		DomainSeparator: domainSeparator,
		StructHash:      structHash,
		EncodedType:     encodedType,
	})
}

func (s *APIServer) SubmitVerification(c *gin.Context) {
	body := c.Request.Body
	defer body.Close()

	var req common.VerifyRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification request"})
		s.logger.Debug("failed to decode verification request", zap.Error(err))
		return
	}

	verification, err := s.manager.Verify(req)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, verification)
}

func (s *APIServer) GetVerification(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification id is required"})
		return
	}

	verification, err := s.manager.GetVerification(id)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, verification)
}

func (s *APIServer) paramsFromQuery(query common.TypedDataParams) (delegate.Params, error) {
	if query.ChainID == 0 {
		return delegate.Params{}, fmt.Errorf("chainId must be positive")
	}

	if !ethcommon.IsHexAddress(query.DelegateContract) {
		return delegate.Params{}, fmt.Errorf("delegateContract %q is not a hex address", query.DelegateContract)
	}

	txHash, err := hash.HexToBytes32Strict(query.TxHash)
	if err != nil {
		return delegate.Params{}, fmt.Errorf("txHash: %w", err)
	}

	nonce := uint256.NewInt(0)
	if strings.TrimSpace(query.RegistrationNonce) != "" {
		if nonce, err = common.ParseUint(query.RegistrationNonce); err != nil {
			return delegate.Params{}, fmt.Errorf("registrationNonce: %w", err)
		}
	}

	timestamp := query.Timestamp
	if timestamp == 0 {
		timestamp = uint64(s.now().UnixMilli())
	}

	return delegate.Params{
		ChainID:           uint256.NewInt(query.ChainID),
		BrokerID:          query.BrokerID,
		DelegateContract:  ethcommon.HexToAddress(query.DelegateContract),
		Timestamp:         timestamp,
		RegistrationNonce: nonce,
		TxHash:            txHash,
	}, nil
}

// fail writes err with the status its type maps to.
func (s *APIServer) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func errorStatus(err error) int {
	var (
		schemaErr    *eip712.SchemaError
		mismatchErr  *eip712.FieldMismatchError
		signatureErr *eip712.InvalidSignatureError
	)

	switch {
	case errors.As(err, &schemaErr), errors.As(err, &mismatchErr), errors.As(err, &signatureErr):
		return http.StatusBadRequest
	case errors.Is(err, manager.ErrVerificationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

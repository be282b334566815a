package manifest

// Name is the plugin package name
const Name = "ecoflow-authentication"

// Version is the plugin version
const Version = "1.0.0"

var algorithms = []string{"HS256", "HS384", "RS256", "RS384"}

func fromEnv(name, label string) Input {
	return Input{Name: name + "FromEnv", Label: label + " from environment", Type: InputCheckbox, Default: false,
		Hint: "Treat " + label + " as the name of an environment variable"}
}

func responseKey(def string) Input {
	return Input{Name: "responseKey", Label: "Response key", Type: InputString, Default: def,
		Hint: "Payload key the result is written to"}
}

func googleClientInputs() []Input {
	return []Input{
		{Name: "clientId", Label: "Client ID", Type: InputString, Required: true},
		fromEnv("clientId", "Client ID"),
		{Name: "clientSecret", Label: "Client secret", Type: InputHiddenString, Required: true},
		fromEnv("clientSecret", "Client secret"),
		{Name: "redirectUri", Label: "Redirect URI", Type: InputString, Required: true},
		fromEnv("redirectUri", "Redirect URI"),
		{Name: "access_type", Label: "Access type", Type: InputRadio, Default: "offline", Options: []string{"offline", "online"}, Required: true},
		{Name: "prompt", Label: "Prompt", Type: InputSelectPicker, Default: "consent", Options: []string{"none", "consent", "select_account"}, Required: true},
		{Name: "scopes", Label: "Scopes", Type: InputListBox, Default: []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"}},
		{Name: "state", Label: "State", Type: InputString},
		{Name: "loginHint", Label: "Login hint", Type: InputString, Hint: "Email address or sub identifier"},
		{Name: "includeGrantedScopes", Label: "Include granted scopes", Type: InputCheckbox, Default: false},
	}
}

// Default returns the plugin manifest
func Default() *Manifest {
	return &Manifest{
		Name:        Name,
		Version:     Version,
		Description: "JWT signing and verification, JWKS publishing and Google OAuth2 flows",
		Steps: []Step{
			{
				Name:        "Sign JWT",
				Kind:        KindMiddleware,
				Description: "Signs a payload object into a JSON Web Token",
				Controller:  ControllerJWTSign,
				Inputs: []Input{
					{Name: "algorithm", Label: "Algorithm", Type: InputSelectPicker, Default: "HS256", Options: algorithms},
					{Name: "secret", Label: "Secret or private key path", Type: InputHiddenString, Required: true,
						Hint: "Shared secret for HS algorithms, private key file for RS algorithms"},
					fromEnv("secret", "Secret"),
					{Name: "payloadKey", Label: "Payload key", Type: InputString, Default: "tokenPayload",
						Hint: "Payload object to sign"},
					{Name: "expiresIn", Label: "Expires in", Type: InputString, Default: "1hr",
						Hint: "A duration such as 10m, 1hr or 2 days. A number counts seconds; text without a unit counts milliseconds"},
					responseKey("token"),
				},
			},
			{
				Name:        "Verify JWT",
				Kind:        KindMiddleware,
				Description: "Verifies the bearer token of the request",
				Controller:  ControllerJWTVerify,
				Inputs: []Input{
					{Name: "algorithm", Label: "Algorithm", Type: InputSelectPicker, Default: "HS256", Options: algorithms},
					{Name: "keyType", Label: "Key source", Type: InputRadio, Default: "secret", Options: []string{"secret", "publicKey"}},
					{Name: "secret", Label: "Secret", Type: InputHiddenString, Hint: "Used when key source is secret"},
					fromEnv("secret", "Secret"),
					{Name: "jwksUri", Label: "JWKS URI", Type: InputString, Hint: "Used when key source is publicKey"},
					fromEnv("jwksUri", "JWKS URI"),
					responseKey("user"),
				},
			},
			{
				Name:        "JWKS",
				Kind:        KindMiddleware,
				Description: "Publishes a PEM public key as a JSON Web Key Set",
				Controller:  ControllerJWKSPublish,
				Inputs: []Input{
					{Name: "publicKey", Label: "Public key path", Type: InputString, Required: true},
					fromEnv("publicKey", "Public key path"),
					responseKey("jwks"),
				},
			},
			{
				Name:        "Google Auth URL",
				Kind:        KindMiddleware,
				Description: "Builds the Google consent page URL",
				Controller:  ControllerGoogleAuthURL,
				Inputs:      append(googleClientInputs(), responseKey("authUrl")),
			},
			{
				Name:        "Google Code Exchange",
				Kind:        KindMiddleware,
				Description: "Exchanges an authorization code using a registered OAuth client",
				Controller:  ControllerGoogleCodeExchange,
				Inputs: []Input{
					{Name: "client", Label: "OAuth client", Type: InputString, Required: true},
					{Name: "codeKey", Label: "Code key", Type: InputString, Default: "code",
						Hint: "Payload key holding the code; the code query parameter is used otherwise"},
					responseKey("tokens"),
				},
			},
			{
				Name:        "Google User Details",
				Kind:        KindMiddleware,
				Description: "Fetches the Google profile for a refresh token",
				Controller:  ControllerGoogleUserDetails,
				Inputs: []Input{
					{Name: "client", Label: "OAuth client", Type: InputString, Required: true},
					{Name: "refreshTokenKey", Label: "Refresh token key", Type: InputString, Default: "refresh_token",
						Hint: "Payload key holding the refresh token; the refresh_token query parameter is used otherwise"},
					responseKey("userDetails"),
				},
			},
			{
				Name:        "Google Authenticate",
				Kind:        KindMiddleware,
				Description: "Runs the whole Google sign-in on the OAuth redirect request",
				Controller:  ControllerGoogleAuthenticate,
				Inputs:      append(googleClientInputs(), responseKey("user")),
			},
		},
	}
}
